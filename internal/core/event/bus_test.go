package event

import "testing"

type pingEvent struct{ N int }
type otherEvent struct{}

func TestEmitVisibleNextTickOnly(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(ev pingEvent) { got = append(got, ev.N) })

	Emit(b, pingEvent{N: 1})
	b.DispatchAll() // 尚未交換：本 tick 不可見
	if len(got) != 0 {
		t.Fatalf("event visible in the emitting tick")
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("events: %v", got)
	}

	// 下一輪交換後不得重複派送
	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 {
		t.Fatalf("event dispatched twice: %v", got)
	}
}

func TestDispatchKeepsTypesSeparate(t *testing.T) {
	b := NewBus()
	pings, others := 0, 0
	Subscribe(b, func(pingEvent) { pings++ })
	Subscribe(b, func(otherEvent) { others++ })

	Emit(b, pingEvent{})
	Emit(b, pingEvent{})
	Emit(b, otherEvent{})
	b.SwapBuffers()
	b.DispatchAll()

	if pings != 2 || others != 1 {
		t.Fatalf("pings=%d others=%d", pings, others)
	}
}
