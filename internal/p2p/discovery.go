package p2p

import (
	"context"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	drouting "github.com/libp2p/go-libp2p/p2p/discovery/routing"
	dutil "github.com/libp2p/go-libp2p/p2p/discovery/util"

	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
)

const (
	dhtDiscoveryInterval = 30 * time.Second
	peerConnectTimeout   = 5 * time.Second
)

// discoveryNotifee handles mDNS peer discovery notifications.
type discoveryNotifee struct {
	bus *LibP2PBus
}

func (d *discoveryNotifee) HandlePeerFound(pi peer.AddrInfo) {
	if pi.ID == d.bus.host.ID() {
		return
	}
	ctx, cancel := context.WithTimeout(d.bus.ctx, peerConnectTimeout)
	defer cancel()
	_ = d.bus.host.Connect(ctx, pi)
}

func (b *LibP2PBus) startMDNS() {
	svc := mdns.NewMdnsService(b.host, b.rendezvous(), &discoveryNotifee{bus: b})
	_ = svc.Start() // mDNS is best-effort local discovery, never fatal.
}

// runDHTDiscovery advertises this node's rendezvous string on the DHT and
// periodically searches for peers sharing it.
func (b *LibP2PBus) runDHTDiscovery() {
	if b.dht == nil {
		return
	}
	routingDiscovery := drouting.NewRoutingDiscovery(b.dht)
	dutil.Advertise(b.ctx, routingDiscovery, b.rendezvous())

	ticker := time.NewTicker(dhtDiscoveryInterval)
	defer ticker.Stop()

	b.findDHTPeers(routingDiscovery)
	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			b.findDHTPeers(routingDiscovery)
		}
	}
}

func (b *LibP2PBus) findDHTPeers(rd *drouting.RoutingDiscovery) {
	ctx, cancel := context.WithTimeout(b.ctx, 20*time.Second)
	defer cancel()

	peerCh, err := rd.FindPeers(ctx, b.rendezvous())
	if err != nil {
		return
	}
	for p := range peerCh {
		if p.ID == b.host.ID() || len(p.Addrs) == 0 {
			continue
		}
		connectCtx, connectCancel := context.WithTimeout(b.ctx, peerConnectTimeout)
		_ = b.host.Connect(connectCtx, p)
		connectCancel()
	}
}
