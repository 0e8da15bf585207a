package p2p

// topicName is the single GossipSub topic carrying every line-delimited
// Message frame: all four message kinds are multiplexed over one topic,
// tagged by Message.Kind.
const topicName = "/klingnode/gossip/1.0.0"
