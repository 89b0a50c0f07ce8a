package rental

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loca-mat/service-rental/internal/domain"
)

func TestNewContractStartsOngoing(t *testing.T) {
	contract, err := NewContract(1, day(1), day(5), 10000)
	require.NoError(t, err)

	assert.Equal(t, ContractStatusOngoing, contract.Status())
	assert.True(t, contract.IsActive())
	assert.Nil(t, contract.ActualReturnDate())
	assert.Regexp(t, regexp.MustCompile(`^LOC-[A-Z2-9]{6}$`), contract.Number())
}

func TestNewContractValidation(t *testing.T) {
	_, err := NewContract(0, day(1), day(5), 10000)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewContract(1, day(5), day(1), 10000)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewContract(1, day(-2), day(5), 10000)
	assert.True(t, domain.IsKind(err, domain.KindValidation), "start in the past")

	_, err = NewContract(1, day(1), day(5), -1)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestContractComplete(t *testing.T) {
	contract, err := NewContract(1, day(1), day(5), 10000)
	require.NoError(t, err)

	require.NoError(t, contract.Complete(day(5)))
	assert.Equal(t, ContractStatusCompleted, contract.Status())
	require.NotNil(t, contract.ActualReturnDate())
	assert.False(t, contract.WasReturnedLate())

	// Terminal: cannot complete or cancel again.
	assert.Error(t, contract.Complete(day(6)))
	assert.Error(t, contract.Cancel(day(0)))
}

func TestContractLateReturn(t *testing.T) {
	contract, err := NewContract(1, day(1), day(5), 10000)
	require.NoError(t, err)

	require.NoError(t, contract.Complete(day(7)))
	assert.True(t, contract.WasReturnedLate())
}

func TestContractCancelOnlyBeforeStart(t *testing.T) {
	contract, err := NewContract(1, day(2), day(5), 10000)
	require.NoError(t, err)

	err = contract.Cancel(day(2))
	assert.True(t, domain.IsKind(err, domain.KindValidation), "cancel on start date")
	assert.Equal(t, ContractStatusOngoing, contract.Status())

	require.NoError(t, contract.Cancel(day(1)))
	assert.Equal(t, ContractStatusCancelled, contract.Status())
	assert.False(t, contract.IsActive())
}

func TestContractNumbersAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		contract, err := NewContract(1, day(1), day(2), 1000)
		require.NoError(t, err)
		assert.False(t, seen[contract.Number()], "duplicate number %s", contract.Number())
		seen[contract.Number()] = true
	}
}
