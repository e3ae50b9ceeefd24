package dummydb

import (
	"sync"

	"github.com/qisedu/udahili/core/admin"
	"github.com/qisedu/udahili/core/applicant"
	"github.com/qisedu/udahili/core/application"
)

// DB is an in-memory database used in tests and local development.
type DB struct {
	applicant   *applicantTable
	application *applicationTable
	admin       *adminTable
}

type (
	applicantTable struct {
		sync.RWMutex
		table map[string]*applicant.Applicant
	}

	applicationTable struct {
		sync.RWMutex
		table map[string]*application.Application
	}

	adminTable struct {
		sync.RWMutex
		table map[string]*admin.Principal
	}
)

func NewDB() *DB {
	return &DB{
		applicant:   &applicantTable{table: make(map[string]*applicant.Applicant)},
		application: &applicationTable{table: make(map[string]*application.Application)},
		admin:       &adminTable{table: make(map[string]*admin.Principal)},
	}
}

// Reset empties all tables.
func (db *DB) Reset() {
	db.applicant.Lock()
	db.applicant.table = make(map[string]*applicant.Applicant)
	db.applicant.Unlock()

	db.application.Lock()
	db.application.table = make(map[string]*application.Application)
	db.application.Unlock()

	db.admin.Lock()
	db.admin.table = make(map[string]*admin.Principal)
	db.admin.Unlock()
}
