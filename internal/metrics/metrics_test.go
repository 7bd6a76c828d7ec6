package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSync(t *testing.T) {
	before := testutil.ToFloat64(PermissionSyncs.WithLabelValues("error"))
	ObserveSync(errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(PermissionSyncs.WithLabelValues("error")))
}

func TestObserveDecision(t *testing.T) {
	before := testutil.ToFloat64(AuthzDecisions.WithLabelValues("deny", "insufficient_permissions"))
	ObserveDecision("deny", "insufficient_permissions")
	assert.Equal(t, before+1, testutil.ToFloat64(AuthzDecisions.WithLabelValues("deny", "insufficient_permissions")))
}
