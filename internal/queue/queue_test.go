package queue

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dekarrin/cmdq/internal/command"
	"github.com/dekarrin/cmdq/internal/registry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	id    uuid.UUID
	floor bool
}

func (ti testItem) ID() uuid.UUID { return ti.id }
func (ti testItem) OnFloor() bool { return ti.floor }

type testPlayer struct {
	commanded bool
}

func (tp *testPlayer) Commanded() bool { return tp.commanded }

// recorder keeps track of what handlers saw.
type recorder struct {
	seen    []command.Command
	prompts int
}

func (r *recorder) handler(fn func(cmd *command.Command) error) registry.Handler {
	return func(cmd *command.Command) error {
		r.seen = append(r.seen, cmd.Copy())
		if fn != nil {
			return fn(cmd)
		}
		return nil
	}
}

// walkHandler reads the direction argument, "prompting" for one by picking
// east if it is not there.
func (r *recorder) walkHandler() registry.Handler {
	return r.handler(func(cmd *command.Command) error {
		dir, err := cmd.GetDirection(command.ArgDirection)
		if err != nil || dir == command.DirNone {
			r.prompts++
			cmd.SetDirection(command.ArgDirection, command.DirEast)
		}
		return nil
	})
}

func newTestRegistry(t *testing.T, entries ...registry.Entry) *registry.Registry {
	all := append([]registry.Entry{
		{Code: command.CodeRepeat, Verb: "repeat"},
	}, entries...)
	reg, err := registry.New(all)
	require.NoError(t, err)
	return reg
}

func Test_Queue_Capacity(t *testing.T) {
	for _, size := range []int{2, 3, 5, DefaultSize} {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			assert := assert.New(t)

			reg := newTestRegistry(t, registry.Entry{Code: command.CodeHold, Verb: "hold"})
			q := New(reg, Options{Size: size})

			for i := 0; i < size-1; i++ {
				cmd := command.New(command.CodeHold)
				cmd.SetNumber("n", i)
				require.NoError(t, q.PushCopy(cmd))
			}
			assert.True(q.Full())
			assert.Equal(size-1, q.Len())

			before := q.Peek().Copy()

			extra := command.New(command.CodeHold)
			extra.SetNumber("n", 999)
			err := q.PushCopy(extra)

			assert.ErrorIs(err, ErrFull)
			assert.Equal(size-1, q.Len())
			assert.Equal(before, *q.Peek())
		})
	}
}

func Test_Queue_DefaultSize(t *testing.T) {
	q := New(newTestRegistry(t), Options{})
	assert.Equal(t, DefaultSize, q.Size())
}

func Test_Queue_OwnershipRoundTrip(t *testing.T) {
	assert := assert.New(t)

	rec := &recorder{}
	var dispatched *command.Command
	reg := newTestRegistry(t, registry.Entry{
		Code:    command.CodeInscribe,
		Verb:    "inscribe",
		Handler: rec.handler(func(cmd *command.Command) error { dispatched = cmd; return nil }),
	})
	q := New(reg, Options{})

	orig := command.New(command.CodeInscribe)
	orig.SetString(command.ArgNote, "hello")

	require.NoError(t, q.PushCopy(orig))

	// changing the original after the push must not reach the queued copy
	orig.SetString(command.ArgNote, "goodbye")

	assert.True(q.Pop(command.CtxGame))
	require.Len(t, rec.seen, 1)

	note, err := rec.seen[0].GetString(command.ArgNote)
	assert.NoError(err)
	assert.Equal("hello", note)

	// and changing the dispatched one must not reach the original
	dispatched.SetString(command.ArgNote, "changed")
	note, err = orig.GetString(command.ArgNote)
	assert.NoError(err)
	assert.Equal("goodbye", note)
}

func Test_Queue_RepeatMaterialization(t *testing.T) {
	assert := assert.New(t)

	rec := &recorder{}
	reg := newTestRegistry(t, registry.Entry{
		Code:          command.CodeWalk,
		Verb:          "walk",
		Handler:       rec.walkHandler(),
		RepeatAllowed: true,
		CanUseEnergy:  true,
	})
	q := New(reg, Options{})

	walk := command.New(command.CodeWalk)
	walk.SetDirection(command.ArgDirection, command.DirNorth)
	require.NoError(t, q.PushCopy(walk))
	q.ExecuteAll(command.CtxGame)

	require.NoError(t, q.PushCopy(command.New(command.CodeRepeat)))
	q.ExecuteAll(command.CtxGame)

	require.Len(t, rec.seen, 2)
	assert.Equal(0, rec.prompts)
	assert.Equal(command.CodeWalk, rec.seen[1].Code)
	assert.Equal(command.CtxGame, rec.seen[1].Context)
	dir, err := rec.seen[1].GetDirection(command.ArgDirection)
	assert.NoError(err)
	assert.Equal(command.DirNorth, dir)
}

func Test_Queue_RepeatOfPromptedArgumentDoesNotPromptAgain(t *testing.T) {
	assert := assert.New(t)

	rec := &recorder{}
	reg := newTestRegistry(t, registry.Entry{
		Code:          command.CodeWalk,
		Verb:          "walk",
		Handler:       rec.walkHandler(),
		RepeatAllowed: true,
	})
	q := New(reg, Options{})

	require.NoError(t, q.Push(command.CodeWalk))
	q.ExecuteAll(command.CtxGame)
	assert.Equal(1, rec.prompts)

	require.NoError(t, q.Push(command.CodeRepeat))
	q.ExecuteAll(command.CtxGame)
	assert.Equal(1, rec.prompts)

	dir, err := rec.seen[1].GetDirection(command.ArgDirection)
	assert.NoError(err)
	assert.Equal(command.DirEast, dir)
}

func Test_Queue_RepeatRejected(t *testing.T) {
	testCases := []struct {
		name    string
		setup   func(t *testing.T, q *Queue)
		handler func(q **Queue) registry.Handler
	}{
		{
			name:  "nothing dispatched yet",
			setup: func(t *testing.T, q *Queue) {},
		},
		{
			name: "handler disabled repeat",
			handler: func(q **Queue) registry.Handler {
				return func(cmd *command.Command) error {
					(*q).DisableRepeat()
					return nil
				}
			},
			setup: func(t *testing.T, q *Queue) {
				require.NoError(t, q.Push(command.CodeDrop))
				q.ExecuteAll(command.CtxGame)
			},
		},
		{
			name: "after release",
			setup: func(t *testing.T, q *Queue) {
				require.NoError(t, q.Push(command.CodeDrop))
				q.ExecuteAll(command.CtxGame)
				q.Release()
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var q *Queue
			var h registry.Handler = func(cmd *command.Command) error { return nil }
			if tc.handler != nil {
				h = tc.handler(&q)
			}
			reg := newTestRegistry(t, registry.Entry{Code: command.CodeDrop, Verb: "drop", Handler: h})
			q = New(reg, Options{})

			tc.setup(t, q)
			lenBefore := q.Len()

			err := q.PushCopy(command.New(command.CodeRepeat))

			assert.ErrorIs(t, err, ErrRepeatRejected)
			assert.Equal(t, lenBefore, q.Len())
		})
	}
}

func Test_Queue_AutoRepeatCountdown(t *testing.T) {
	assert := assert.New(t)

	var q *Queue
	var repeatsAtStart []int
	var repeatsAfter []int
	reg := newTestRegistry(t, registry.Entry{
		Code: command.CodeTunnel,
		Verb: "tunnel",
		Handler: func(cmd *command.Command) error {
			repeatsAtStart = append(repeatsAtStart, cmd.Repeats)
			return nil
		},
		RepeatAllowed: true,
		CanUseEnergy:  true,
		AutoRepeat:    5,
	})
	q = New(reg, Options{})

	require.NoError(t, q.Push(command.CodeTunnel))

	assert.True(q.Pop(command.CtxGame))
	assert.Equal([]int{5}, repeatsAtStart)
	assert.Equal(4, q.Repeats())
	assert.True(q.Repeating())

	for q.Pop(command.CtxGame) {
		repeatsAfter = append(repeatsAfter, q.Repeats())
	}

	assert.Equal([]int{5, 4, 3, 2, 1}, repeatsAtStart)
	assert.Equal([]int{3, 2, 1, 0}, repeatsAfter)
	assert.False(q.Repeating())
	assert.Equal(0, q.Len())
}

func Test_Queue_ExplicitRepeatCount(t *testing.T) {
	assert := assert.New(t)

	calls := 0
	reg := newTestRegistry(t,
		registry.Entry{
			Code:          command.CodeWalk,
			Verb:          "walk",
			Handler:       func(cmd *command.Command) error { calls++; return nil },
			RepeatAllowed: true,
		},
		registry.Entry{
			Code:    command.CodeHold,
			Verb:    "hold",
			Handler: func(cmd *command.Command) error { calls++; return nil },
		},
	)
	q := New(reg, Options{})

	require.NoError(t, q.PushRepeat(command.CodeWalk, 3))
	q.ExecuteAll(command.CtxGame)
	assert.Equal(3, calls)

	// repeats are dropped for commands that can't be repeated
	calls = 0
	require.NoError(t, q.PushRepeat(command.CodeHold, 3))
	q.ExecuteAll(command.CtxGame)
	assert.Equal(1, calls)
	assert.False(q.Repeating())
}

func Test_Queue_HandlerControlsRepeat(t *testing.T) {
	testCases := []struct {
		name        string
		act         func(q *Queue, call int)
		expectCalls int
	}{
		{
			name: "cancel on third call",
			act: func(q *Queue, call int) {
				if call == 3 {
					q.CancelRepeat()
				}
			},
			expectCalls: 3,
		},
		{
			name: "set to zero on first call",
			act: func(q *Queue, call int) {
				q.SetRepeat(0)
			},
			expectCalls: 1,
		},
		{
			name: "set to a different count",
			act: func(q *Queue, call int) {
				if call == 1 {
					// the handler's count stands as-is
					q.SetRepeat(2)
				}
			},
			// call 1 sets 2, call 2 leaves it so it drops to 1, call 3 drops it to 0
			expectCalls: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var q *Queue
			calls := 0
			reg := newTestRegistry(t, registry.Entry{
				Code: command.CodeTunnel,
				Verb: "tunnel",
				Handler: func(cmd *command.Command) error {
					calls++
					tc.act(q, calls)
					return nil
				},
				RepeatAllowed: true,
				AutoRepeat:    99,
			})
			q = New(reg, Options{})

			require.NoError(t, q.Push(command.CodeTunnel))
			q.ExecuteAll(command.CtxGame)

			assert.Equal(t, tc.expectCalls, calls)
			assert.False(t, q.Repeating())
		})
	}
}

func Test_Queue_FloorItemRepeatGuard(t *testing.T) {
	testCases := []struct {
		name      string
		onFloor   bool
		expectErr error
	}{
		{name: "floor item", onFloor: true, expectErr: ErrRepeatRejected},
		{name: "carried item", onFloor: false, expectErr: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var q *Queue
			reg := newTestRegistry(t, registry.Entry{
				Code: command.CodePickup,
				Verb: "pick up",
				Handler: func(cmd *command.Command) error {
					q.DisableRepeatIfFloorItem()
					return nil
				},
			})
			q = New(reg, Options{})

			cmd := command.New(command.CodePickup)
			cmd.SetItem(command.ArgItem, testItem{id: uuid.New(), floor: tc.onFloor})
			require.NoError(t, q.PushCopy(cmd))
			q.ExecuteAll(command.CtxGame)

			err := q.PushCopy(command.New(command.CodeRepeat))

			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_Queue_LastCommandSurvivesSlotReuse(t *testing.T) {
	assert := assert.New(t)

	rec := &recorder{}
	reg := newTestRegistry(t,
		registry.Entry{Code: command.CodeInscribe, Verb: "inscribe", Handler: rec.handler(nil)},
		registry.Entry{Code: command.CodeLook, Verb: "look", Handler: rec.handler(nil)},
	)
	q := New(reg, Options{Size: 3})

	a := command.New(command.CodeInscribe)
	a.SetString(command.ArgInscription, "a")
	require.NoError(t, q.PushCopy(a))
	q.ExecuteAll(command.CtxGame)

	// background commands go around the ring without replacing the command
	// that REPEAT will use
	bg := command.New(command.CodeLook)
	bg.Background = true
	require.NoError(t, q.PushCopy(bg))
	require.NoError(t, q.PushCopy(bg))
	q.ExecuteAll(command.CtxGame)

	// this reuses the slot that held a
	d := command.New(command.CodeLook)
	d.SetString(command.ArgNote, "d")
	require.NoError(t, q.PushCopy(d))

	require.NoError(t, q.PushCopy(command.New(command.CodeRepeat)))
	q.ExecuteAll(command.CtxGame)

	require.Len(t, rec.seen, 5)
	assert.Equal(command.CodeLook, rec.seen[3].Code)
	last := rec.seen[4]
	assert.Equal(command.CodeInscribe, last.Code)
	text, err := last.GetString(command.ArgInscription)
	assert.NoError(err)
	assert.Equal("a", text)
}

func Test_Queue_BackgroundNotRemembered(t *testing.T) {
	assert := assert.New(t)

	rec := &recorder{}
	reg := newTestRegistry(t,
		registry.Entry{Code: command.CodeWalk, Verb: "walk", Handler: rec.walkHandler(), RepeatAllowed: true},
		registry.Entry{Code: command.CodeLook, Verb: "look", Handler: rec.handler(nil)},
	)
	q := New(reg, Options{})

	walk := command.New(command.CodeWalk)
	walk.SetDirection(command.ArgDirection, command.DirSouth)
	require.NoError(t, q.PushCopy(walk))
	q.ExecuteAll(command.CtxGame)

	look := command.New(command.CodeLook)
	look.Background = true
	require.NoError(t, q.PushCopy(look))
	q.ExecuteAll(command.CtxGame)

	require.NoError(t, q.Push(command.CodeRepeat))
	q.ExecuteAll(command.CtxGame)

	require.Len(t, rec.seen, 3)
	assert.Equal(command.CodeWalk, rec.seen[2].Code)
}

func Test_Queue_CommandedRemap(t *testing.T) {
	assert := assert.New(t)

	var gotCodes []command.Code
	reg := newTestRegistry(t,
		registry.Entry{Code: command.CodeWalk, Verb: "walk", Handler: func(cmd *command.Command) error {
			gotCodes = append(gotCodes, "walk handler")
			return nil
		}},
		registry.Entry{Code: command.CodeCommandMonster, Verb: "make a monster act", Handler: func(cmd *command.Command) error {
			gotCodes = append(gotCodes, cmd.Code)
			return nil
		}},
	)
	p := &testPlayer{commanded: true}
	q := New(reg, Options{Player: p})

	require.NoError(t, q.Push(command.CodeWalk))
	q.ExecuteAll(command.CtxGame)

	p.commanded = false
	require.NoError(t, q.Push(command.CodeWalk))
	q.ExecuteAll(command.CtxGame)

	// the record keeps its own code, only the handler changes
	assert.Equal([]command.Code{command.CodeWalk, "walk handler"}, gotCodes)
}

func Test_Queue_Coercion(t *testing.T) {
	assert := assert.New(t)

	calls := 0
	coerceCalls := 0
	reg := newTestRegistry(t,
		registry.Entry{
			Code:          command.CodeWalk,
			Verb:          "walk",
			Handler:       func(cmd *command.Command) error { calls++; return nil },
			RepeatAllowed: true,
			CanUseEnergy:  true,
		},
		registry.Entry{Code: command.CodeHelp, Verb: "help"},
	)
	q := New(reg, Options{
		Coercer: CoercerFunc(func(cmd *command.Command, entry registry.Entry) bool {
			coerceCalls++
			return entry.CanUseEnergy
		}),
	})

	require.NoError(t, q.PushRepeat(command.CodeWalk, 3))
	assert.True(q.Pop(command.CtxGame))

	assert.Equal(0, calls)
	assert.Equal(1, coerceCalls)
	// a coerced command did not use up a repetition
	assert.Equal(3, q.Repeats())

	// commands without a handler are never offered to the coercer
	q.CancelRepeat()
	require.NoError(t, q.Push(command.CodeHelp))
	q.ExecuteAll(command.CtxGame)
	assert.Equal(1, coerceCalls)
}

func Test_Queue_HandlerErrors(t *testing.T) {
	assert := assert.New(t)

	boom := errors.New("boom")
	var reported []error
	reg := newTestRegistry(t,
		registry.Entry{Code: command.CodeDrop, Verb: "drop", Handler: func(cmd *command.Command) error {
			return fmt.Errorf("get item: %w", command.ErrAborted)
		}},
		registry.Entry{Code: command.CodeCast, Verb: "cast", Handler: func(cmd *command.Command) error {
			return boom
		}},
	)
	q := New(reg, Options{OnError: func(cmd command.Command, err error) {
		reported = append(reported, err)
	}})

	require.NoError(t, q.Push(command.CodeDrop))
	require.NoError(t, q.Push(command.CodeCast))
	q.ExecuteAll(command.CtxGame)

	assert.Equal([]error{boom}, reported)
}

func Test_Queue_UnknownCodes(t *testing.T) {
	assert := assert.New(t)

	q := New(newTestRegistry(t), Options{})

	assert.ErrorIs(q.Push("DANCE"), ErrUnknownCode)
	assert.Equal(0, q.Len())

	// a record pushed directly with an unknown code is consumed without effect
	require.NoError(t, q.PushCopy(command.New("DANCE")))
	assert.True(q.Pop(command.CtxGame))
	assert.False(q.Pop(command.CtxGame))
}

func Test_Queue_PeekAndFlush(t *testing.T) {
	assert := assert.New(t)

	calls := 0
	reg := newTestRegistry(t, registry.Entry{Code: command.CodeDrop, Verb: "drop", Handler: func(cmd *command.Command) error {
		calls++
		return nil
	}})
	q := New(reg, Options{})

	require.NoError(t, q.Push(command.CodeDrop))
	q.Peek().SetNumber(command.ArgQuantity, 4)

	n, err := q.Peek().GetNumber(command.ArgQuantity)
	assert.NoError(err)
	assert.Equal(4, n)

	require.NoError(t, q.Push(command.CodeDrop))
	assert.Equal(2, q.Len())

	q.Flush()
	assert.Equal(0, q.Len())
	assert.False(q.Pop(command.CtxGame))
	assert.Equal(0, calls)
}

func Test_Queue_RepeatChangeNotification(t *testing.T) {
	assert := assert.New(t)

	var changes []int
	reg := newTestRegistry(t, registry.Entry{
		Code:          command.CodeOpen,
		Verb:          "open",
		Handler:       func(cmd *command.Command) error { return nil },
		RepeatAllowed: true,
		AutoRepeat:    2,
	})
	q := New(reg, Options{OnRepeatChange: func(n int) { changes = append(changes, n) }})

	require.NoError(t, q.Push(command.CodeOpen))
	q.ExecuteAll(command.CtxGame)

	assert.Equal([]int{2, 1, 0}, changes)
}
