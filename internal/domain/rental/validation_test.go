package rental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loca-mat/service-rental/internal/domain"
)

func TestUnavailableItems(t *testing.T) {
	available := testItem(1, 1000)
	rented := testItem(2, 1000)
	require.NoError(t, rented.Rent())
	maintenance := testItem(3, 1000)
	require.NoError(t, maintenance.ChangeStatus(ItemStatusMaintenance))

	assert.Nil(t, UnavailableItems([]*Item{available}))
	assert.Equal(t, []uint64{2, 3}, UnavailableItems([]*Item{available, rented, maintenance}))
}

func TestValidateRentalDates(t *testing.T) {
	assert.NoError(t, ValidateRentalDates(day(0), day(0)), "same-day rental starting today")
	assert.NoError(t, ValidateRentalDates(day(1), day(10)))

	err := ValidateRentalDates(day(5), day(2))
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	err = ValidateRentalDates(day(-1), day(2))
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestNewClientValidation(t *testing.T) {
	client, err := NewClient("Marie", "Durand", "Marie@Example.COM", "0601020304", "12 rue des Lilas", false)
	require.NoError(t, err)
	assert.Equal(t, "marie@example.com", client.Email())
	assert.False(t, client.IsVIP())

	client.SetVIP(true)
	assert.True(t, client.IsVIP())

	_, err = NewClient("", "Durand", "marie@example.com", "", "", false)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewClient("Marie", "Durand", "not-an-email", "", "", false)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}
