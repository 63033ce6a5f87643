package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cloudlodge/internal/errors"
)

func TestModificationFormParse(t *testing.T) {
	form := ModificationForm{CheckInDate: "2025-06-15", CheckOutDate: "2025-06-18", NumGuests: 2}
	r, err := form.Parse()
	require.NoError(t, err)
	assert.Equal(t, 3, r.Nights())
}

func TestModificationFormMissingDates(t *testing.T) {
	form := ModificationForm{CheckOutDate: "2025-06-18"}
	_, err := form.Parse()
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestModificationFormBadDateFormat(t *testing.T) {
	form := ModificationForm{CheckInDate: "15/06/2025", CheckOutDate: "2025-06-18"}
	_, err := form.Parse()
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestModificationFormZeroGuestsAccepted(t *testing.T) {
	// Zero guests is not a form error; the coordinator clamps it into the
	// room's limits instead.
	form := ModificationForm{CheckInDate: "2025-06-15", CheckOutDate: "2025-06-18", NumGuests: 0}
	_, err := form.Parse()
	require.NoError(t, err)
}
