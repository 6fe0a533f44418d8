// Package memstore is an in-process implementation of every store the
// services use. It backs the service and handler tests and can run the app
// without MongoDB for local experiments.
//
// All tables share one lock, so multi-table operations observe a consistent
// snapshot. Faults and latency can be injected to exercise the error paths
// that a real backend produces.
package memstore

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DB holds the tables. Use the exported fields as the individual stores.
type DB struct {
	Users         *Users
	Credentials   *Credentials
	Groups        *Groups
	Memberships   *Memberships
	Announcements *Announcements
	Sessions      *Sessions

	mu            sync.RWMutex
	users         map[primitive.ObjectID]models.User
	credentials   map[primitive.ObjectID]models.Credential
	groups        map[primitive.ObjectID]models.Group
	memberships   []models.GroupMembership
	announcements []models.Announcement
	sessions      map[string]models.Session
	seq           int64

	faultMu sync.Mutex
	faults  map[string]*fault
	latency time.Duration
}

type fault struct {
	err   error
	times int // <= 0 means until cleared
}

// New returns an empty DB.
func New() *DB {
	db := &DB{
		users:       make(map[primitive.ObjectID]models.User),
		credentials: make(map[primitive.ObjectID]models.Credential),
		groups:      make(map[primitive.ObjectID]models.Group),
		sessions:    make(map[string]models.Session),
		faults:      make(map[string]*fault),
	}
	db.Users = &Users{db: db}
	db.Credentials = &Credentials{db: db}
	db.Groups = &Groups{db: db}
	db.Memberships = &Memberships{db: db}
	db.Announcements = &Announcements{db: db}
	db.Sessions = &Sessions{db: db}
	return db
}

// Fail makes the next `times` calls of op return err. op is
// "<table>.<Method>", e.g. "users.GetByID", or "*" for every call.
// times <= 0 keeps failing until ClearFaults.
func (db *DB) Fail(op string, err error, times int) {
	db.faultMu.Lock()
	defer db.faultMu.Unlock()
	db.faults[op] = &fault{err: err, times: times}
}

// ClearFaults removes every injected fault and latency.
func (db *DB) ClearFaults() {
	db.faultMu.Lock()
	defer db.faultMu.Unlock()
	db.faults = make(map[string]*fault)
	db.latency = 0
}

// SetLatency delays every call by d (honouring the caller's context).
func (db *DB) SetLatency(d time.Duration) {
	db.faultMu.Lock()
	defer db.faultMu.Unlock()
	db.latency = d
}

// begin runs the latency, context and fault checks shared by every call.
func (db *DB) begin(ctx context.Context, op string) error {
	db.faultMu.Lock()
	latency := db.latency
	err := db.takeFault(op)
	if err == nil {
		err = db.takeFault("*")
	}
	db.faultMu.Unlock()

	if latency > 0 {
		t := time.NewTimer(latency)
		select {
		case <-ctx.Done():
			t.Stop()
		case <-t.C:
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errs.FromStore(ctxErr)
	}
	return err
}

func (db *DB) takeFault(op string) error {
	f, ok := db.faults[op]
	if !ok {
		return nil
	}
	if f.times > 0 {
		f.times--
		if f.times == 0 {
			delete(db.faults, op)
		}
	}
	return f.err
}

func lessID(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
