package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
)

func memberships(ids ...string) []*models.GalleryImage {
	out := make([]*models.GalleryImage, len(ids))
	for i, id := range ids {
		out[i] = &models.GalleryImage{GalleryID: "g1", ImageID: id, Position: i}
	}
	return out
}

func TestReconcileOrderKeepsSurvivorOrder(t *testing.T) {
	current := memberships("a", "b", "c", "d")

	// Drop b, add e; survivors a,c,d must keep their relative order
	got := reconcileOrder(current, []string{"e", "d", "a", "c"})
	assert.Equal(t, []string{"a", "c", "d", "e"}, got)
}

func TestReconcileOrderYieldsExactlyDesiredSet(t *testing.T) {
	current := memberships("a", "b")

	got := reconcileOrder(current, []string{"x", "y", "z"})
	assert.Equal(t, []string{"x", "y", "z"}, got)

	got = reconcileOrder(current, nil)
	assert.Empty(t, got)

	got = reconcileOrder(nil, []string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestReconcileOrderAppendsNewcomersInRequestOrder(t *testing.T) {
	current := memberships("keep")

	got := reconcileOrder(current, []string{"n2", "keep", "n1"})
	assert.Equal(t, []string{"keep", "n2", "n1"}, got)
}

func TestDedupeDropsRepeatsAndBlanks(t *testing.T) {
	got := dedupe([]string{"a", "", "b", "a", "c", "b"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
