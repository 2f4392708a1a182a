package sim

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

var (
	idGeneratorMutex        sync.Mutex
	idGeneratorInstantiated bool
	idGenerator             IDGenerator
)

// IDGenerator generates the IDs of entities and calendar entries.
type IDGenerator interface {
	Generate() string
}

// UseSequentialIDGenerator makes the IDs 1, 2, 3, ... so that the IDs of two
// runs of the same model are identical.
func UseSequentialIDGenerator() {
	useIDGenerator(&sequentialIDGenerator{})
}

// UseXIDGenerator makes the IDs globally unique. The IDs are not
// deterministic anymore, but they do not collide across simulations that
// write into the same database.
func UseXIDGenerator() {
	useIDGenerator(xidGenerator{})
}

func useIDGenerator(g IDGenerator) {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if idGeneratorInstantiated {
		logrus.Panic("cannot change id generator type after using it")
	}

	idGenerator = g
	idGeneratorInstantiated = true
}

// GetIDGenerator returns the ID generator in use. If none has been chosen,
// the sequential generator is used.
func GetIDGenerator() IDGenerator {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if !idGeneratorInstantiated {
		idGenerator = &sequentialIDGenerator{}
		idGeneratorInstantiated = true
	}

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(idNumber, 10)
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
