package apifakes

import (
	"context"
	"sync"

	"github.com/fantasyleague/leagueclient/leagueapi"
)

var _ leagueapi.API = (*FakeAPI)(nil)

// FakeAPI is a scripted in-memory backend for tests. Set the response
// or error fields before exercising the code under test; call counters
// record what reached the boundary.
type FakeAPI struct {
	mu sync.Mutex

	LoginResponse   *leagueapi.LoginResponse
	LoginErr        error
	UnlockResponse  *leagueapi.MessageResponse
	UnlockErr       error
	ConfirmResponse *leagueapi.MessageResponse
	ConfirmErr      error
	SetPassResponse *leagueapi.MessageResponse
	SetPassErr      error

	LoginCalls     int
	UnlockCalls    int
	ConfirmCalls   int
	SetPassCalls   int
	LastLoginEmail string
	LastToken      string
}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{}
}

func (f *FakeAPI) Login(_ context.Context, email, _ string) (*leagueapi.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	f.LastLoginEmail = email
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	return f.LoginResponse, nil
}

func (f *FakeAPI) RequestUnlock(_ context.Context, email string) (*leagueapi.MessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UnlockCalls++
	f.LastLoginEmail = email
	if f.UnlockErr != nil {
		return nil, f.UnlockErr
	}
	return f.UnlockResponse, nil
}

func (f *FakeAPI) ConfirmUnlock(_ context.Context, token string) (*leagueapi.MessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ConfirmCalls++
	f.LastToken = token
	if f.ConfirmErr != nil {
		return nil, f.ConfirmErr
	}
	return f.ConfirmResponse, nil
}

func (f *FakeAPI) SetPassword(_ context.Context, token, _ string) (*leagueapi.MessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetPassCalls++
	f.LastToken = token
	if f.SetPassErr != nil {
		return nil, f.SetPassErr
	}
	return f.SetPassResponse, nil
}
