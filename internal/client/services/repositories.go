package services

import (
	"github.com/dmitrijs2005/offsync/internal/client/repositories/analytics"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/assessments"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/cache"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/deadletters"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/queue"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/userdata"
	"github.com/dmitrijs2005/offsync/internal/client/store"
)

// Repositories groups the domain facades the services work with.
type Repositories struct {
	Assessments assessments.Repository
	Analytics   analytics.Repository
	Cache       cache.Repository
	UserData    userdata.Repository
	Queue       queue.Repository
	DeadLetters deadletters.Repository
}

// NewRepositories builds every facade on top of st.
func NewRepositories(st *store.Store) Repositories {
	return Repositories{
		Assessments: assessments.NewStoreRepository(st),
		Analytics:   analytics.NewStoreRepository(st),
		Cache:       cache.NewStoreRepository(st),
		UserData:    userdata.NewStoreRepository(st),
		Queue:       queue.NewStoreRepository(st),
		DeadLetters: deadletters.NewStoreRepository(st),
	}
}
