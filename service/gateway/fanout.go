package gateway

import (
	"hash/fnv"
	"sync"

	"github.com/covechat/cove/tools/safe"
)

type fanoutJob struct {
	conns   []*Client
	payload []byte
}

// Fanout spreads broadcast work over a fixed worker pool. Jobs are sharded
// by room name to a fixed worker, so two broadcasts into the same room are
// enqueued to clients in emit order.
type Fanout struct {
	queues   []chan fanoutJob
	stopOnce sync.Once
}

func NewFanout(workers, queue int) *Fanout {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = 256
	}
	f := &Fanout{queues: make([]chan fanoutJob, workers)}
	for i := range f.queues {
		q := make(chan fanoutJob, queue)
		f.queues[i] = q
		safe.Go(func() {
			for job := range q {
				for _, c := range job.conns {
					c.enqueue(job.payload)
				}
			}
		})
	}
	return f
}

// Broadcast queues payload for every listed client. Blocks only if the
// room's worker queue is full, which backpressures the emitter rather than
// dropping room-ordered events.
func (f *Fanout) Broadcast(room RoomID, conns []*Client, payload []byte) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	f.queues[f.shard(room)] <- fanoutJob{conns: conns, payload: payload}
}

func (f *Fanout) shard(room RoomID) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(room.Name()))
	return int(h.Sum32() % uint32(len(f.queues)))
}

func (f *Fanout) Close() {
	f.stopOnce.Do(func() {
		for _, q := range f.queues {
			close(q)
		}
	})
}
