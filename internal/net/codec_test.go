package net

import (
	"bytes"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0x05, 0x01, 0x00, 0x00, 0x00}
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload: got %v want %v", got, payload)
	}
}

func TestFrameRejectsZeroAndOversize(t *testing.T) {
	if _, err := ReadFrame(bytes.NewReader([]byte{0, 0})); err == nil {
		t.Fatalf("zero-length frame must be rejected")
	}
	if err := WriteFrame(&bytes.Buffer{}, make([]byte, maxFrameSize+1)); err == nil {
		t.Fatalf("oversize frame must be rejected")
	}
	// 長度聲稱超過上限：不得嘗試分配
	if _, err := ReadFrame(bytes.NewReader([]byte{0xff, 0xff})); err == nil {
		t.Fatalf("oversize header must be rejected")
	}
}
