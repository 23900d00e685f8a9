package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records written frames and lets tests unblock ReadMessage.
type fakeConn struct {
	mu       sync.Mutex
	frames   [][]byte
	writeErr error
	readCh   chan struct{}
	closed   bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{readCh: make(chan struct{})}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.readCh
	return 0, nil, errors.New("closed")
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c1 := &Client{UserID: "user-1", Conn: newFakeConn()}
	c2 := &Client{UserID: "user-1", Conn: newFakeConn()}

	hub.RegisterClient(c1)
	hub.RegisterClient(c2)
	waitFor(t, func() bool { return hub.ConnCount("user-1") == 2 })

	hub.UnregisterClient(c1)
	waitFor(t, func() bool { return hub.ConnCount("user-1") == 1 })
	assert.True(t, c1.Conn.(*fakeConn).closed)

	hub.UnregisterClient(c2)
	waitFor(t, func() bool { return hub.ConnCount("user-1") == 0 })
}

func TestHubPublish(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	ownConn := newFakeConn()
	otherConn := newFakeConn()
	hub.RegisterClient(&Client{UserID: "user-1", Conn: ownConn})
	hub.RegisterClient(&Client{UserID: "user-2", Conn: otherConn})
	waitFor(t, func() bool { return hub.ConnCount("user-1") == 1 && hub.ConnCount("user-2") == 1 })

	hub.Publish("user-1", Event{Type: NoteCreated, Entity: map[string]string{"id": "n1"}})

	waitFor(t, func() bool { return ownConn.frameCount() == 1 })
	assert.Equal(t, 0, otherConn.frameCount(), "events are scoped to the owning user")

	var ev Event
	require.NoError(t, json.Unmarshal(ownConn.frames[0], &ev))
	assert.Equal(t, NoteCreated, ev.Type)
}

func TestHubPublishWriteErrorDoesNotBlockOthers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	broken := newFakeConn()
	broken.writeErr = errors.New("write failed")
	healthy := newFakeConn()

	hub.RegisterClient(&Client{UserID: "user-1", Conn: broken})
	hub.RegisterClient(&Client{UserID: "user-1", Conn: healthy})
	waitFor(t, func() bool { return hub.ConnCount("user-1") == 2 })

	hub.PublishUploadProgress("user-1", "file-1", 40)

	waitFor(t, func() bool { return healthy.frameCount() == 1 })

	var ev Event
	require.NoError(t, json.Unmarshal(healthy.frames[0], &ev))
	assert.Equal(t, FileUploadProgress, ev.Type)
	assert.Equal(t, "file-1", ev.FileID)
	assert.Equal(t, 40, ev.Progress)
}

// Removing a non-tail client shifts the backing array in place; publishing
// concurrently must iterate a snapshot, not the live slice. Run with -race.
func TestHubPublishDuringClientChurn(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := &Client{UserID: "user-1", Conn: newFakeConn()}
	last := &Client{UserID: "user-1", Conn: newFakeConn()}
	hub.RegisterClient(first)
	hub.RegisterClient(last)
	waitFor(t, func() bool { return hub.ConnCount("user-1") == 2 })

	churnDone := make(chan struct{})
	go func() {
		defer close(churnDone)
		for i := 0; i < 200; i++ {
			a := &Client{UserID: "user-1", Conn: newFakeConn()}
			b := &Client{UserID: "user-1", Conn: newFakeConn()}
			hub.RegisterClient(a)
			hub.RegisterClient(b)
			// a is non-tail while b sits behind it, so this removal shifts
			// the array under the publishers.
			hub.UnregisterClient(a)
			hub.UnregisterClient(b)
		}
	}()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				hub.Publish("user-1", Event{Type: NoteCreated})
			}
		}()
	}
	wg.Wait()
	<-churnDone

	waitFor(t, func() bool { return hub.ConnCount("user-1") == 2 })
	assert.Greater(t, first.Conn.(*fakeConn).frameCount(), 0)
	assert.Greater(t, last.Conn.(*fakeConn).frameCount(), 0)
}

// overlapConn flags any two WriteMessage calls that run at the same time.
type overlapConn struct {
	fakeConn
	active  int32
	overlap int32
}

func (o *overlapConn) WriteMessage(messageType int, data []byte) error {
	if atomic.AddInt32(&o.active, 1) > 1 {
		atomic.StoreInt32(&o.overlap, 1)
	}
	time.Sleep(time.Microsecond)
	atomic.AddInt32(&o.active, -1)
	return o.fakeConn.WriteMessage(messageType, data)
}

func TestHubPublishSerializesWritesPerConnection(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	oc := &overlapConn{fakeConn: fakeConn{readCh: make(chan struct{})}}
	hub.RegisterClient(&Client{UserID: "user-1", Conn: oc})
	waitFor(t, func() bool { return hub.ConnCount("user-1") == 1 })

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				hub.PublishUploadProgress("user-1", "file-1", i)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), atomic.LoadInt32(&oc.overlap), "connection saw overlapping writes")
	assert.Equal(t, 800, oc.frameCount())
}

func TestHubHandleConnection(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	fc := newFakeConn()
	client := &Client{UserID: "user-1", Conn: fc}

	done := make(chan struct{})
	go func() {
		hub.HandleConnection(client)
		close(done)
	}()

	waitFor(t, func() bool { return hub.ConnCount("user-1") == 1 })

	// Unblock the read loop; the handler must unregister on its way out.
	close(fc.readCh)
	<-done
	waitFor(t, func() bool { return hub.ConnCount("user-1") == 0 })
}
