package client

import (
	"context"
	"net/url"
	"strconv"
	"sync"
)

type ServicesStore struct {
	client *Client

	mu       sync.RWMutex
	services []*Service
	current  *Service
	total    int64
	page     int
	pages    int
	loading  bool
}

func NewServicesStore(c *Client) *ServicesStore {
	return &ServicesStore{client: c, page: 1, pages: 1}
}

func (s *ServicesStore) Services() []*Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.services
}

func (s *ServicesStore) Current() *Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *ServicesStore) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Page returns the current page and the page count.
func (s *ServicesStore) Page() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page, s.pages
}

func (s *ServicesStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *ServicesStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *ServicesStore) FetchServices(ctx context.Context, params SearchServicesParams) error {
	s.setLoading(true)
	defer s.setLoading(false)

	var list ServiceList
	if err := s.client.Get(ctx, "/services", params.values(), &list); err != nil {
		return err
	}

	s.mu.Lock()
	s.services = list.Services
	s.total = list.Total
	s.page = list.Page
	s.pages = list.Pages
	s.mu.Unlock()
	return nil
}

func (s *ServicesStore) FetchService(ctx context.Context, id string) (*Service, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	var service Service
	if err := s.client.Get(ctx, "/services/"+url.PathEscape(id), nil, &service); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = &service
	s.mu.Unlock()
	return &service, nil
}

func (s *ServicesStore) CreateService(ctx context.Context, data CreateServiceData) (*Service, error) {
	var service Service
	if err := s.client.Post(ctx, "/services", data, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

func (s *ServicesStore) UpdateService(ctx context.Context, id string, data UpdateServiceData) (*Service, error) {
	var service Service
	if err := s.client.Put(ctx, "/services/"+url.PathEscape(id), data, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

func (s *ServicesStore) LikeService(ctx context.Context, id string) (*LikeResult, error) {
	var res LikeResult
	if err := s.client.Post(ctx, "/services/"+url.PathEscape(id)+"/like", nil, &res); err != nil {
		return nil, err
	}
	s.applyLike(id, res.LikeCount)
	return &res, nil
}

func (s *ServicesStore) UnlikeService(ctx context.Context, id string) (*LikeResult, error) {
	var res LikeResult
	if err := s.client.Delete(ctx, "/services/"+url.PathEscape(id)+"/unlike", &res); err != nil {
		return nil, err
	}
	s.applyLike(id, res.LikeCount)
	return &res, nil
}

func (s *ServicesStore) applyLike(id string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == id {
		s.current.LikeCount = count
	}
	for _, svc := range s.services {
		if svc.ID == id {
			svc.LikeCount = count
		}
	}
}

func (p SearchServicesParams) values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("q", p.Query)
	set("kind", p.Kind)
	set("tradingType", p.TradingType)
	set("categoryId", p.CategoryID)
	set("sortBy", p.SortBy)
	set("sortOrder", p.SortOrder)
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}
