package gridsearch

import (
	"container/heap"

	"github.com/pdrpinto/gridsearch/internal/tree"
)

// PriorityQueueItem is a frontier entry. Priority is the strategy's key (g, h or
// g+h); Sequence breaks ties so that earlier insertions leave first.
type PriorityQueueItem struct {
	Node     tree.Handle
	GScore   float64
	Priority float64
	Sequence uint64
}

type PriorityQueue []*PriorityQueueItem

func (queue PriorityQueue) Len() int { return len(queue) }
func (queue PriorityQueue) Less(i, j int) bool {
	if queue[i].Priority != queue[j].Priority {
		return queue[i].Priority < queue[j].Priority
	}
	return queue[i].Sequence < queue[j].Sequence
}
func (queue PriorityQueue) Swap(i, j int) { queue[i], queue[j] = queue[j], queue[i] }

func (queue *PriorityQueue) Push(x any) {
	*queue = append(*queue, x.(*PriorityQueueItem))
}

func (queue *PriorityQueue) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	*queue = oldQueue[:n-1]
	return item
}

// frontier wraps PriorityQueue with the insertion counter.
type frontier struct {
	queue PriorityQueue
	next  uint64
}

func (f *frontier) push(node tree.Handle, g, priority float64) {
	heap.Push(&f.queue, &PriorityQueueItem{Node: node, GScore: g, Priority: priority, Sequence: f.next})
	f.next++
}

func (f *frontier) pop() *PriorityQueueItem {
	return heap.Pop(&f.queue).(*PriorityQueueItem)
}

func (f *frontier) Len() int { return f.queue.Len() }
