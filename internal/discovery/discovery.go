// Package discovery registers this game node's address and load in etcd so
// a front door can route a join_room to a node with capacity, generalized
// from the teacher's common/discovery.Registry (lease grant, keep-alive
// loop, re-register-on-disconnect) without its Resolver/Seeker halves —
// this spec has no grpc client-side load balancing to do (§2.2: "no lobby
// RPC surface is in scope"), only the registration side a gate would poll.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"riichiserver/internal/config"
	"riichiserver/internal/obs"
)

// Node is the etcd record for one game server instance, keyed by
// "game/<nodeID>".
type Node struct {
	NodeID string  `json:"nodeId"`
	Addr   string  `json:"addr"`
	Load   float64 `json:"load"`
}

func (n Node) key() string { return "game/" + n.NodeID }

// Registry owns the etcd client, lease, and keep-alive loop for one Node.
// Mirrors the teacher's Registry field-for-field (etcd client, lease id,
// keep-alive channel, close channel) but folds grantLease+bindLease into a
// single register() call since this node has no separate "bind vs grant"
// retry path to coordinate with a resolver watcher.
type Registry struct {
	cli         *clientv3.Client
	leaseID     clientv3.LeaseID
	keepAliveCh <-chan *clientv3.LeaseKeepAliveResponse
	node        Node
	ttl         int
	closeCh     chan struct{}
}

// Register dials etcd, grants a lease, writes the node record, and starts
// the background keep-alive loop. The returned Registry must be Closed on
// shutdown to revoke the lease and delete the record promptly rather than
// waiting out the TTL.
func Register(conf config.EtcdConf, nodeID, addr string) (*Registry, error) {
	if nodeID == "" {
		return nil, fmt.Errorf("discovery: nodeID must not be empty")
	}
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   conf.Addrs,
		DialTimeout: time.Duration(conf.DialTimeout) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: dial etcd: %w", err)
	}

	ttl := conf.LeaseTTL
	if ttl <= 0 {
		ttl = 30
	}
	r := &Registry{
		cli:     cli,
		node:    Node{NodeID: nodeID, Addr: addr},
		ttl:     ttl,
		closeCh: make(chan struct{}),
	}
	if err := r.register(); err != nil {
		cli.Close()
		return nil, err
	}
	go r.watch()
	return r, nil
}

func (r *Registry) register() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.ttl)*time.Second)
	defer cancel()

	lease, err := r.cli.Grant(ctx, int64(r.ttl))
	if err != nil {
		return fmt.Errorf("discovery: grant lease: %w", err)
	}
	r.leaseID = lease.ID

	data, err := json.Marshal(r.node)
	if err != nil {
		return err
	}
	if _, err := r.cli.Put(ctx, r.node.key(), string(data), clientv3.WithLease(r.leaseID)); err != nil {
		return fmt.Errorf("discovery: put node record: %w", err)
	}

	keepAliveCh, err := r.cli.KeepAlive(context.Background(), r.leaseID)
	if err != nil {
		return fmt.Errorf("discovery: keep alive: %w", err)
	}
	r.keepAliveCh = keepAliveCh
	return nil
}

// UpdateLoad rewrites the node record with a fresh load sample, reusing the
// existing lease (no re-grant) — mirrors the teacher's Registry.UpdateLoad.
func (r *Registry) UpdateLoad(load float64) error {
	r.node.Load = load
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.ttl)*time.Second)
	defer cancel()

	data, err := json.Marshal(r.node)
	if err != nil {
		return err
	}
	_, err = r.cli.Put(ctx, r.node.key(), string(data), clientv3.WithLease(r.leaseID))
	return err
}

func (r *Registry) watch() {
	ticker := time.NewTicker(time.Duration(r.ttl/2) * time.Second)
	defer ticker.Stop()
	keepAliveCh := r.keepAliveCh

	for {
		select {
		case res, ok := <-keepAliveCh:
			if !ok || res == nil {
				obs.Warn("discovery: keep-alive channel closed, re-registering node %s", r.node.NodeID)
				if err := r.register(); err != nil {
					obs.Error("discovery: re-register failed: %v", err)
				} else {
					keepAliveCh = r.keepAliveCh
				}
			}
		case <-ticker.C:
			// belt-and-suspenders: re-confirm the record still exists even
			// if the keep-alive channel looks healthy.
		case <-r.closeCh:
			r.unregister()
			return
		}
	}
}

func (r *Registry) unregister() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.ttl)*time.Second)
	defer cancel()
	if _, err := r.cli.Delete(ctx, r.node.key()); err != nil {
		obs.Error("discovery: unregister node %s: %v", r.node.NodeID, err)
	}
	if _, err := r.cli.Revoke(context.Background(), r.leaseID); err != nil {
		obs.Error("discovery: revoke lease: %v", err)
	}
	r.cli.Close()
}

// Close stops the keep-alive loop and deletes the node's etcd record.
func (r *Registry) Close() {
	close(r.closeCh)
}
