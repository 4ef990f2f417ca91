package collector

// hitQueue is a bounded binary heap whose top is the least competitive hit.
// Value-based storage keeps the ranking window in one allocation.
type hitQueue struct {
	items []ScoreDoc
	// better reports whether a ranks before b.
	better func(a, b *ScoreDoc) bool
}

func newHitQueue(capacity int, better func(a, b *ScoreDoc) bool) *hitQueue {
	return &hitQueue{
		items:  make([]ScoreDoc, 0, capacity),
		better: better,
	}
}

// Len returns the number of queued hits.
func (q *hitQueue) Len() int { return len(q.items) }

// pushBounded inserts item into a heap of at most capacity items.
// If the heap is full and item does not rank before the top, it is skipped.
func (q *hitQueue) pushBounded(item ScoreDoc, capacity int) bool {
	if len(q.items) < capacity {
		q.items = append(q.items, item)
		q.siftUp(len(q.items) - 1)
		return true
	}
	if capacity == 0 || !q.better(&item, &q.items[0]) {
		return false
	}
	q.items[0] = item
	q.siftDown(0)
	return true
}

// drain pops every hit and returns them best first.
func (q *hitQueue) drain() []ScoreDoc {
	out := make([]ScoreDoc, len(q.items))
	for i := len(q.items) - 1; i >= 0; i-- {
		out[i] = q.pop()
	}
	return out
}

func (q *hitQueue) pop() ScoreDoc {
	n := len(q.items)
	root := q.items[0]
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]
	if len(q.items) > 0 {
		q.siftDown(0)
	}
	return root
}

// less orders the heap with the worst hit on top.
func (q *hitQueue) less(i, j int) bool {
	return q.better(&q.items[j], &q.items[i])
}

func (q *hitQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			break
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

func (q *hitQueue) siftDown(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && q.less(right, left) {
			child = right
		}
		if !q.less(child, i) {
			break
		}
		q.items[i], q.items[child] = q.items[child], q.items[i]
		i = child
	}
}
