package nodearea

import (
	"context"
	"errors"
	"testing"
)

type testSignal struct {
	value int
}

func (testSignal) SignalType() string { return "test" }

func addPipe(s *Scope, name string, log *[]string, fn func(Signal) (Signal, error)) {
	s.AddPipe(func(_ context.Context, sig Signal) (Signal, error) {
		*log = append(*log, name)
		if fn == nil {
			return sig, nil
		}
		return fn(sig)
	})
}

func TestScope_EmitRunsPipesInOrder(t *testing.T) {
	s := NewScope("root")
	var order []string
	addPipe(s, "a", &order, func(sig Signal) (Signal, error) {
		return testSignal{sig.(testSignal).value + 1}, nil
	})
	addPipe(s, "b", &order, func(sig Signal) (Signal, error) {
		return testSignal{sig.(testSignal).value * 10}, nil
	})

	out, err := s.Emit(context.Background(), testSignal{1})
	if err != nil {
		t.Fatal(err)
	}
	if got := out.(testSignal).value; got != 20 {
		t.Errorf("value = %d, want 20", got)
	}
	if !equalNames(order, []string{"a", "b"}) {
		t.Errorf("order = %v", order)
	}
}

func TestScope_NilStopsChain(t *testing.T) {
	s := NewScope("root")
	var order []string
	addPipe(s, "veto", &order, func(Signal) (Signal, error) { return nil, nil })
	addPipe(s, "after", &order, nil)

	out, err := s.Emit(context.Background(), testSignal{})
	if out != nil || err != nil {
		t.Errorf("Emit = %v, %v; want nil, nil", out, err)
	}
	if !equalNames(order, []string{"veto"}) {
		t.Errorf("order = %v, want [veto]", order)
	}
}

func TestScope_ErrorStopsChain(t *testing.T) {
	s := NewScope("root")
	boom := errors.New("boom")
	var order []string
	addPipe(s, "fail", &order, func(Signal) (Signal, error) { return nil, boom })
	addPipe(s, "after", &order, nil)

	_, err := s.Emit(context.Background(), testSignal{})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if len(order) != 1 {
		t.Errorf("order = %v", order)
	}
}

func TestScope_EmptyPassesThrough(t *testing.T) {
	s := NewScope("root")
	in := testSignal{7}
	out, err := s.Emit(context.Background(), in)
	if err != nil || out != in {
		t.Errorf("Emit = %v, %v", out, err)
	}
}

func TestScope_Use(t *testing.T) {
	parent := NewScope("parent")
	child := NewScope("child")
	var order []string
	addPipe(parent, "parent-before", &order, nil)
	parent.Use(child)
	addPipe(child, "child", &order, func(sig Signal) (Signal, error) {
		return testSignal{sig.(testSignal).value + 100}, nil
	})
	addPipe(parent, "parent-after", &order, nil)

	out, err := parent.Emit(context.Background(), testSignal{1})
	if err != nil {
		t.Fatal(err)
	}
	if out.(testSignal).value != 101 {
		t.Errorf("value = %d, want 101", out.(testSignal).value)
	}
	if !equalNames(order, []string{"parent-before", "child", "parent-after"}) {
		t.Errorf("order = %v", order)
	}
	if child.Parent() != parent || parent.Parent() != nil {
		t.Error("parent links wrong")
	}
	if child.Name() != "child" {
		t.Errorf("Name = %q", child.Name())
	}
}

func TestScope_PipeAddedDuringEmitAppliesNextTime(t *testing.T) {
	s := NewScope("root")
	var order []string
	s.AddPipe(func(_ context.Context, sig Signal) (Signal, error) {
		order = append(order, "first")
		if len(order) == 1 {
			addPipe(s, "late", &order, nil)
		}
		return sig, nil
	})

	s.Emit(context.Background(), testSignal{})
	s.Emit(context.Background(), testSignal{})
	if !equalNames(order, []string{"first", "first", "late"}) {
		t.Errorf("order = %v", order)
	}
}
