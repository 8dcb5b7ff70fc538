package event

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// TestNewBus 测试创建新的事件总线
func TestNewBus(t *testing.T) {
	bus := NewBus()
	if bus == nil {
		t.Fatal("NewBus() 返回 nil")
	}
	if bus.handlers == nil {
		t.Fatal("NewBus() handlers map 未初始化")
	}
}

// TestSubscribeAndPublish 测试订阅和发布事件（同步派发）
func TestSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	var received any
	bus.Subscribe("test", func(event any) {
		received = event
	})

	bus.Publish("test", "hello")

	if received != "hello" {
		t.Errorf("handler 收到 %v, 期望 %v", received, "hello")
	}
}

func TestPublishNoSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Publish("nonexistent", "data")
}

func TestSubscribeNilHandlerIgnored(t *testing.T) {
	bus := NewBus()
	bus.Subscribe("test", nil)
	bus.Publish("test", "data")
	if n := len(bus.handlers["test"]); n != 0 {
		t.Fatalf("handlers = %d, want 0", n)
	}
}

// TestHandlersRunInSubscriptionOrder 测试 handler 按订阅顺序执行
func TestHandlersRunInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		bus.Subscribe("test", func(event any) {
			order = append(order, i)
		})
	}

	bus.Publish("test", nil)

	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("order = %v, want [0 1 2]", order)
	}
}

func TestMultipleEvents(t *testing.T) {
	bus := NewBus()
	var jumped, landed bool

	bus.Subscribe(EventActorJumped, func(event any) {
		jumped = true
	})
	bus.Subscribe(EventActorLanded, func(event any) {
		landed = true
	})

	bus.Publish(EventActorJumped, JumpEvent{})

	if !jumped {
		t.Error("jump handler 应该被调用")
	}
	if landed {
		t.Error("land handler 不应该被调用")
	}
}

// TestPanickingHandlerDoesNotStopOthers 测试 panic 被恢复且不影响后续 handler
func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus()
	var called bool
	bus.Subscribe("test", func(event any) {
		panic("boom")
	})
	bus.Subscribe("test", func(event any) {
		called = true
	})

	bus.Publish("test", nil)

	if !called {
		t.Fatal("second handler was not called after first panicked")
	}
}

func TestConcurrentSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	var count atomic.Int64

	bus.Subscribe("test", func(event any) {
		count.Add(1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish("test", "data")
		}()
	}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Subscribe("test", func(event any) {
				count.Add(1)
			})
		}()
	}

	wg.Wait()

	if count.Load() < 100 {
		t.Errorf("至少应该收到 100 次事件, 实际收到 %d 次", count.Load())
	}
}

func TestPublishJumpEventData(t *testing.T) {
	bus := NewBus()

	var received JumpEvent
	var ok bool
	bus.Subscribe(EventActorJumped, func(event any) {
		received, ok = event.(JumpEvent)
	})

	sent := JumpEvent{ActorID: 7, Tick: 42, Position: mgl64.Vec3{1, 2, 3}, SinceGrounded: 0.05}
	bus.Publish(EventActorJumped, sent)

	if !ok {
		t.Fatal("handler 未收到 JumpEvent")
	}
	if received != sent {
		t.Errorf("收到 %+v, 期望 %+v", received, sent)
	}
}
