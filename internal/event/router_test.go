package event

import (
	"testing"
)

func TestRouterBuffersAndFlushes(t *testing.T) {
	router := NewRouter(RouterWithSubscriberCapacity(4))
	first := Event{RunID: "run-1", Type: TypeRunStarted}
	second := Event{RunID: "run-1", Type: TypePlanReady}
	router.Publish(first)
	router.Publish(second)
	sub := router.Subscribe("run-1")
	defer sub.Close()
	if got := <-sub.Events; got.Type != first.Type {
		t.Fatalf("expected first buffered event, got %s", got.Type)
	}
	if got := <-sub.Events; got.Type != second.Type {
		t.Fatalf("expected second buffered event, got %s", got.Type)
	}
}

func TestRouterBacklogLimitDropsOldest(t *testing.T) {
	router := NewRouter(RouterWithBacklogLimit(2))
	router.Publish(Event{RunID: "run-1", Type: TypeRunStarted})
	router.Publish(Event{RunID: "run-1", Type: TypeTaskStarted, TaskIndex: 0})
	router.Publish(Event{RunID: "run-1", Type: TypeTaskStarted, TaskIndex: 1})
	sub := router.Subscribe("run-1")
	defer sub.Close()
	if got := <-sub.Events; got.Type != TypeTaskStarted || got.TaskIndex != 0 {
		t.Fatalf("expected oldest surviving event, got %s index %d", got.Type, got.TaskIndex)
	}
	if got := <-sub.Events; got.TaskIndex != 1 {
		t.Fatalf("expected newest event, got index %d", got.TaskIndex)
	}
}

func TestRouterIsolatesRuns(t *testing.T) {
	router := NewRouter()
	subA := router.Subscribe("run-a")
	defer subA.Close()
	subB := router.Subscribe("run-b")
	defer subB.Close()
	router.Publish(Event{RunID: "run-a", Type: TypeRunStarted})
	select {
	case got := <-subA.Events:
		if got.RunID != "run-a" {
			t.Fatalf("unexpected run id: %s", got.RunID)
		}
	default:
		t.Fatalf("expected delivery to run-a subscriber")
	}
	select {
	case <-subB.Events:
		t.Fatalf("event leaked across runs")
	default:
	}
}

func TestRouterKeepsTerminalEventOnOverflow(t *testing.T) {
	router := NewRouter(RouterWithSubscriberCapacity(1))
	sub := router.Subscribe("run-1")
	defer sub.Close()
	router.Publish(Event{RunID: "run-1", Type: TypeRunCompleted})
	router.Publish(Event{RunID: "run-1", Type: TypeTaskStarted})
	if got := <-sub.Events; got.Type != TypeRunCompleted {
		t.Fatalf("terminal event must survive overflow, got %s", got.Type)
	}
	select {
	case <-sub.Events:
		t.Fatalf("unexpected extra event")
	default:
	}
}

func TestRouterOverflowEvictsProgressForTerminal(t *testing.T) {
	router := NewRouter(RouterWithSubscriberCapacity(1))
	sub := router.Subscribe("run-1")
	defer sub.Close()
	router.Publish(Event{RunID: "run-1", Type: TypeTaskStarted})
	router.Publish(Event{RunID: "run-1", Type: TypeRunAborted})
	if got := <-sub.Events; got.Type != TypeRunAborted {
		t.Fatalf("expected terminal event to replace progress, got %s", got.Type)
	}
}

func TestRouterPublishAfterCloseIsSafe(t *testing.T) {
	router := NewRouter()
	sub := router.Subscribe("run-1")
	sub.Close()
	router.Publish(Event{RunID: "run-1", Type: TypeTaskStarted})
}

func TestRouterConcurrentPublishAndClose(t *testing.T) {
	router := NewRouter(RouterWithSubscriberCapacity(1))
	for i := 0; i < 50; i++ {
		sub := router.Subscribe("run-1")
		done := make(chan struct{})
		go func() {
			for j := 0; j < 20; j++ {
				router.Publish(Event{RunID: "run-1", Type: TypeTaskStarted, TaskIndex: j})
			}
			close(done)
		}()
		sub.Close()
		<-done
	}
}

func TestRouterDeliveryWithDrainingConsumer(t *testing.T) {
	router := NewRouter(RouterWithSubscriberCapacity(1))
	sub := router.Subscribe("run-1")
	defer sub.Close()
	drained := make(chan struct{})
	go func() {
		for range sub.Events {
		}
		close(drained)
	}()
	for i := 0; i < 200; i++ {
		router.Publish(Event{RunID: "run-1", Type: TypeTaskStarted, TaskIndex: i})
	}
	sub.Close()
	<-drained
}
