package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vetblood/pkg/domain-errors"
)

func TestChatLimiterEnforcesWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewChatLimiter(2, 10*time.Second)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow(1))
	require.True(t, l.Allow(1))
	assert.False(t, l.Allow(1), "third request in the window must be throttled")

	// A different chat has its own budget.
	assert.True(t, l.Allow(2))

	// Window elapses, budget resets.
	now = now.Add(10 * time.Second)
	assert.True(t, l.Allow(1))
}

func TestChatLimiterPrunesIdleChats(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewChatLimiter(1, time.Second)
	l.now = func() time.Time { return now }

	for id := int64(0); id < 100; id++ {
		l.Allow(id)
	}
	now = now.Add(2 * time.Second)
	l.Allow(200)
	assert.Len(t, l.chats, 1)
}

func TestFormatProfile(t *testing.T) {
	got := formatProfile(&Profile{FullName: "Иван Петров", Role: "owner", Phone: "+79991234567"})
	assert.Contains(t, got, "Иван Петров")
	assert.Contains(t, got, "владелец")
	assert.Contains(t, got, "+79991234567")
	assert.NotContains(t, got, "Email")
}

func TestFormatPets(t *testing.T) {
	assert.Equal(t, "У вас пока нет питомцев.", formatPets(nil))

	got := formatPets([]PetSummary{
		{Name: "Рекс", Species: "dog", Breed: "лабрадор", BloodType: "DEA 1.1+"},
		{Name: "Мурка", Species: "cat"},
	})
	assert.Contains(t, got, "Рекс (dog, лабрадор), кровь DEA 1.1+")
	assert.Contains(t, got, "Мурка (cat)")
}

func TestUserFacingErrorHidesInternals(t *testing.T) {
	internal := dErrors.New(dErrors.CodeInternal, "pq: connection refused")
	assert.NotContains(t, userFacingError(internal), "pq:")

	unauthorized := dErrors.New(dErrors.CodeUnauthorized, "no user for telegram id")
	assert.Contains(t, userFacingError(unauthorized), "/start")
}
