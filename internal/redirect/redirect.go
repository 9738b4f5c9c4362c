// Package redirect реализует конечный автомат перехода по короткой ссылке:
// Pending -> Redirecting (таймер взведен, будет переход) либо Pending -> NotFound.
package redirect

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ppinng/url-shotener/storage"
)

const DefaultDelay = 1500 * time.Millisecond

var ErrNotRedirecting = errors.New("redirect is not in redirecting state")

// State - закрытое объединение состояний Pending, Redirecting и NotFound
type State interface {
	isState()
}

type Pending struct{}

type Redirecting struct {
	Token string
	URL   string
}

type NotFound struct {
	Token string
}

func (Pending) isState()     {}
func (Redirecting) isState() {}
func (NotFound) isState()    {}

type Getter interface {
	Get(ctx context.Context, token string) (string, error)
}

// Navigator выполняет собственно переход на оригинальный URL
type Navigator func(longURL string)

type Redirect struct {
	token    string
	delay    time.Duration
	navigate Navigator

	mu        sync.Mutex
	state     State
	timer     *time.Timer
	tornDown  bool
	navigated bool
}

func New(token string, delay time.Duration, navigate Navigator) *Redirect {
	return &Redirect{
		token:    token,
		delay:    delay,
		navigate: navigate,
		state:    Pending{},
	}
}

func (r *Redirect) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Enter синхронно ищет токен в хранилище.
// Найден - переходим в Redirecting, не найден - в терминальное NotFound.
// Прочие ошибки хранилища возвращаются вызывающему, состояние остается Pending
func (r *Redirect) Enter(ctx context.Context, store Getter) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.state.(Pending); !ok {
		return r.state, nil
	}
	longURL, err := store.Get(ctx, r.token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			r.state = NotFound{Token: r.token}
			return r.state, nil
		}
		return r.state, errors.Wrapf(err, "unable to look up token %s", r.token)
	}
	r.state = Redirecting{Token: r.token, URL: longURL}
	return r.state, nil
}

// Start взводит одноразовый таймер, по срабатыванию которого выполняется переход.
// Повторный вызов ничего не делает
func (r *Redirect) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.state.(Redirecting)
	if !ok {
		return ErrNotRedirecting
	}
	if r.timer != nil || r.tornDown {
		return nil
	}
	r.timer = time.AfterFunc(r.delay, func() {
		r.fire(state.URL)
	})
	return nil
}

func (r *Redirect) fire(longURL string) {
	r.mu.Lock()
	if r.tornDown || r.navigated {
		r.mu.Unlock()
		return
	}
	r.navigated = true
	r.mu.Unlock()
	r.navigate(longURL)
}

// Teardown отменяет таймер. Возвращает true, если переход был отменен
func (r *Redirect) Teardown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tornDown {
		return false
	}
	r.tornDown = true
	if r.timer == nil || r.navigated {
		return false
	}
	r.timer.Stop()
	return true
}

// Wait взводит таймер и блокируется до перехода либо до отмены контекста.
// При отмене контекста автомат разбирается и перехода не происходит
func Wait(ctx context.Context, token string, delay time.Duration, store Getter) (State, error) {
	done := make(chan string, 1)
	r := New(token, delay, func(longURL string) {
		done <- longURL
	})
	state, err := r.Enter(ctx, store)
	if err != nil {
		return state, err
	}
	if _, ok := state.(Redirecting); !ok {
		return state, nil
	}
	if err := r.Start(); err != nil {
		return state, err
	}
	select {
	case <-done:
		return state, nil
	case <-ctx.Done():
		r.Teardown()
		return state, ctx.Err()
	}
}
