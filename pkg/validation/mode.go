package validation

import (
	"errors"
	"fmt"

	"github.com/almflow/workflows/pkg/models"
)

// Mode selects which side of a reference is authoritative.
type Mode string

const (
	// ModeCreate treats names as authoritative; ids in the definition are disregarded.
	ModeCreate Mode = "create"
	// ModeUpdate treats ids as authoritative and resolves them back to names.
	ModeUpdate Mode = "update"
)

var ErrUnknownMode = errors.New("unknown validation mode")

// ParseMode parses "create" or "update". An empty string means create.
func ParseMode(text string) (Mode, error) {
	switch Mode(text) {
	case "", ModeCreate:
		return ModeCreate, nil
	case ModeUpdate:
		return ModeUpdate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, text)
	}
}

// idPolicy captures everything that differs between create and update validation. It is
// bound once into a checker so the rules below never branch on a mode parameter.
type idPolicy interface {
	mode() Mode
	// trusts reports whether the reference id should be resolved instead of the name.
	trusts(id *int64) bool
	// resolvesProjectPaths reports whether path-only project references are looked up.
	resolvesProjectPaths() bool
	// artifactTypeID is the id written onto an artifact type reference resolved by name.
	artifactTypeID(catalogID int64) int64
	// exceptID is the workflow id excluded from the name uniqueness check.
	exceptID(definition *models.ImportWorkflow) *int64
}

type nameAuthority struct{}

func (nameAuthority) mode() Mode { return ModeCreate }

func (nameAuthority) trusts(*int64) bool { return false }

func (nameAuthority) resolvesProjectPaths() bool { return true }

func (nameAuthority) artifactTypeID(catalogID int64) int64 { return -catalogID }

func (nameAuthority) exceptID(*models.ImportWorkflow) *int64 { return nil }

type idAuthority struct{}

func (idAuthority) mode() Mode { return ModeUpdate }

func (idAuthority) trusts(id *int64) bool { return id != nil }

func (idAuthority) resolvesProjectPaths() bool { return false }

func (idAuthority) artifactTypeID(catalogID int64) int64 { return catalogID }

func (idAuthority) exceptID(definition *models.ImportWorkflow) *int64 { return definition.ID }

// checker walks one definition. It owns the Result and the policy for a single call.
type checker struct {
	result *Result
	ids    idPolicy

	// unlinkedGroupProjects holds group entries whose project path did not resolve.
	unlinkedGroupProjects map[*models.ImportUserGroup]struct{}
}

func newChecker(result *Result, ids idPolicy) *checker {
	return &checker{
		result:                result,
		ids:                   ids,
		unlinkedGroupProjects: make(map[*models.ImportUserGroup]struct{}),
	}
}

func ptr[T any](v T) *T {
	return &v
}
