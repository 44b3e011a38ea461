package pool

// TaskFunc is the callback a Task invokes. It is handed the opaque
// context the submitter embedded in the Task; ownership of that context
// stays with the submitter.
type TaskFunc func(ctx any)

// Task is a single unit of work. Its next field is the intrusive
// linkage used to thread it through ring buffers and queues without any
// allocation beyond the Task itself — the pool never allocates on the
// submission path.
type Task struct {
	fn   TaskFunc
	ctx  any
	next *Task
}

// NewTask builds a Task around fn and ctx. The returned Task is not yet
// owned by any queue.
func NewTask(fn TaskFunc, ctx any) *Task {
	return &Task{fn: fn, ctx: ctx}
}

func (t *Task) run() {
	t.fn(t.ctx)
}

// Batch is an ordered, singly-linked chain of one or more tasks. It is
// immutable once constructed and handed to Schedule.
type Batch struct {
	head  *Task
	tail  *Task
	count int
}

// NewBatch builds a Batch from tasks in order. Schedule rejects an empty
// batch.
func NewBatch(tasks ...*Task) Batch {
	var b Batch
	for _, t := range tasks {
		b.Append(t)
	}
	return b
}

// Append threads t onto the end of the batch.
func (b *Batch) Append(t *Task) {
	t.next = nil
	if b.tail == nil {
		b.head = t
		b.tail = t
	} else {
		b.tail.next = t
		b.tail = t
	}
	b.count++
}

// Len reports the number of tasks in the batch.
func (b *Batch) Len() int { return b.count }

// Empty reports whether the batch carries no tasks.
func (b *Batch) Empty() bool { return b.count == 0 }
