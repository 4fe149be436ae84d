package client

import (
	"context"
	"net/url"
	"sync"
)

type TalksStore struct {
	client *Client

	mu      sync.RWMutex
	talks   []*Talk
	current *Talk
	loading bool
}

func NewTalksStore(c *Client) *TalksStore {
	return &TalksStore{client: c}
}

func (s *TalksStore) Talks() []*Talk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.talks
}

// Current is the talk last loaded with FetchTalk, messages included.
func (s *TalksStore) Current() *Talk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *TalksStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *TalksStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *TalksStore) FetchTalks(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	var resp struct {
		Talks []*Talk `json:"talks"`
	}
	if err := s.client.Get(ctx, "/talks", nil, &resp); err != nil {
		return err
	}

	s.mu.Lock()
	s.talks = resp.Talks
	s.mu.Unlock()
	return nil
}

func (s *TalksStore) FetchTalk(ctx context.Context, id string) (*Talk, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	var talk Talk
	if err := s.client.Get(ctx, "/talks/"+url.PathEscape(id), nil, &talk); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = &talk
	s.mu.Unlock()
	return &talk, nil
}

func (s *TalksStore) CreateTalk(ctx context.Context, data CreateTalkData) (*Talk, error) {
	var talk Talk
	if err := s.client.Post(ctx, "/talks", data, &talk); err != nil {
		return nil, err
	}
	return &talk, nil
}

// SendMessage appends the new message to Current when it is the same talk.
func (s *TalksStore) SendMessage(ctx context.Context, talkID string, data SendMessageData) (*Message, error) {
	var msg Message
	if err := s.client.Post(ctx, "/talks/"+url.PathEscape(talkID)+"/message", data, &msg); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == talkID {
		s.current.Messages = append(s.current.Messages, &msg)
	}
	s.mu.Unlock()
	return &msg, nil
}

func (s *TalksStore) CreateOffer(ctx context.Context, talkID string, data CreateOfferData) (*Offer, error) {
	var offer Offer
	if err := s.client.Post(ctx, "/talks/"+url.PathEscape(talkID)+"/offer", data, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}
