package leave

import (
	"testing"

	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusApproved}:   true,
		{StatusPending, StatusRejected}:   true,
		{StatusPending, StatusCancelled}:  true,
		{StatusApproved, StatusCancelled}: true,
		{StatusRejected, StatusPending}:   true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]Status{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus(" approved ")
	assert.True(t, ok)
	assert.Equal(t, StatusApproved, st)

	_, ok = ParseStatus("ARCHIVED")
	assert.False(t, ok)

	assert.True(t, StatusPending.Blocks())
	assert.True(t, StatusApproved.Blocks())
	assert.False(t, StatusRejected.Blocks())
	assert.False(t, StatusCancelled.Blocks())
}

func TestTransitionAuthority(t *testing.T) {
	decide := transitionAuthority(StatusPending, StatusApproved)
	assert.Equal(t, domain.CapDecideLeave, decide.capability)
	assert.True(t, decide.notSelf)
	assert.True(t, decide.needsReportLine)
	assert.False(t, decide.owner)

	withdraw := transitionAuthority(StatusPending, StatusCancelled)
	assert.True(t, withdraw.owner)

	revoke := transitionAuthority(StatusApproved, StatusCancelled)
	assert.Equal(t, domain.CapCancelApprovedLeave, revoke.capability)
	assert.False(t, revoke.owner)

	assert.True(t, transitionAuthority(StatusRejected, StatusPending).owner)
}

func TestInclusiveDays(t *testing.T) {
	start, _ := parseDate("2025-01-01")
	end, _ := parseDate("2025-01-03")
	assert.Equal(t, 3, inclusiveDays(start, end))
	assert.Equal(t, 1, inclusiveDays(start, start))

	// crosses the end of February in a leap year
	start, _ = parseDate("2024-02-28")
	end, _ = parseDate("2024-03-01")
	assert.Equal(t, 3, inclusiveDays(start, end))
}
