package mq

import (
	"testing"

	"pgregory.net/rapid"
)

// A plain-slice reference model of the same push/pop rules: urgent pushes
// go to the front, normal pushes go to the back, reads pop the front. If
// Queue ever disagrees with this model, one of its ordering guarantees
// (no fabrication, no duplication, urgent-before-normal) has broken.
type refModel struct {
	items []int
}

func (r *refModel) push(v int, urgent bool) {
	if urgent {
		r.items = append([]int{v}, r.items...)
	} else {
		r.items = append(r.items, v)
	}
}

func (r *refModel) pop() (int, bool) {
	if len(r.items) == 0 {
		return 0, false
	}
	v := r.items[0]
	r.items = r.items[1:]
	return v, true
}

type op struct {
	value  int
	urgent bool
}

func TestQueueMatchesReferenceModel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ops := rapid.SliceOfN(
			rapid.Custom(func(rt *rapid.T) op {
				return op{
					value:  rapid.IntRange(0, 1_000_000).Draw(rt, "value"),
					urgent: rapid.Bool().Draw(rt, "urgent"),
				}
			}),
			0, 64,
		).Draw(rt, "ops")

		q := New(nil)
		model := &refModel{}

		for _, o := range ops {
			if o.urgent {
				_ = q.WriteUrgent(0, o.value)
			} else {
				_ = q.Write(0, o.value)
			}
			model.push(o.value, o.urgent)
		}

		for {
			want, wantOK := model.pop()
			got, gotOK := q.Poll()
			if wantOK != gotOK {
				rt.Fatalf("queue/model disagree on emptiness: model=%v queue=%v", wantOK, gotOK)
			}
			if !wantOK {
				break
			}
			if got.Payload != want {
				rt.Fatalf("queue fabricated or reordered a value: want %v got %v", want, got.Payload)
			}
		}

		// Invariant 1: at rest, head == nil iff tail == nil.
		if (q.head == nil) != (q.tail == nil) {
			rt.Fatalf("head/tail nilness disagree: head=%v tail=%v", q.head, q.tail)
		}
	})
}

// Invariant: for an MQ with no urgent writes, read order equals write order.
func TestNoUrgentMeansFIFO(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := rapid.SliceOfN(rapid.IntRange(0, 1_000_000), 0, 64).Draw(rt, "values")

		q := New(nil)
		for _, v := range values {
			_ = q.Write(0, v)
		}

		for _, want := range values {
			got, ok := q.Poll()
			if !ok || got.Payload != want {
				rt.Fatalf("FIFO violated: want %v got %v ok=%v", want, got.Payload, ok)
			}
		}
		_, ok := q.Poll()
		if ok {
			rt.Fatalf("queue not empty after draining all writes")
		}
	})
}

// Invariant: ReadType may overtake earlier messages of other types, but the
// relative order of the untouched messages is preserved.
func TestReadTypeOvertakePreservesRemainderOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(rt, "n")
		targetType := Type(rapid.IntRange(0, 3).Draw(rt, "targetType"))

		q := New(nil)
		var remainder []int
		var targets []int
		for i := 0; i < n; i++ {
			typ := Type(rapid.IntRange(0, 3).Draw(rt, "typ"))
			_ = q.Write(typ, i)
			if typ == targetType {
				targets = append(targets, i)
			} else {
				remainder = append(remainder, i)
			}
		}

		var drained []int
		for range targets {
			m, ok := q.PollType(targetType)
			if !ok {
				rt.Fatalf("expected a type-%d message, queue is empty", targetType)
			}
			drained = append(drained, m.Payload.(int))
		}
		if len(drained) != len(targets) {
			rt.Fatalf("drained %d targets, expected %d", len(drained), len(targets))
		}

		for _, want := range remainder {
			m, ok := q.Poll()
			if !ok || m.Payload.(int) != want {
				rt.Fatalf("remainder order broken: want %v got %v ok=%v", want, m.Payload, ok)
			}
		}
	})
}
