package ecs

import "testing"

func TestStaleHandleResolvesDead(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	if !p.Alive(a) {
		t.Fatalf("fresh handle must be alive")
	}

	p.Destroy(a)
	if p.Alive(a) {
		t.Fatalf("destroyed handle must be dead")
	}

	// 槽位重用後，舊 handle 仍然失效
	b := p.Create()
	if b.Index() != a.Index() {
		t.Fatalf("free list must reuse the slot")
	}
	if b.Generation() == a.Generation() {
		t.Fatalf("generation must advance on reuse")
	}
	if p.Alive(a) {
		t.Fatalf("stale handle must stay dead after slot reuse")
	}
	if !p.Alive(b) {
		t.Fatalf("new handle must be alive")
	}
}

func TestDestroyStaleHandleIsNoop(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	p.Destroy(a)
	b := p.Create()

	p.Destroy(a) // 過期 handle：不得誤殺後繼者
	if !p.Alive(b) {
		t.Fatalf("destroying a stale handle must not kill the reused slot")
	}
}

func TestDeferredDestruction(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()

	w.MarkForDestruction(id)
	if !w.Alive(id) {
		t.Fatalf("marked entity must stay alive until the flush")
	}

	w.FlushDestroyQueue()
	if w.Alive(id) {
		t.Fatalf("flushed entity must be dead")
	}
}
