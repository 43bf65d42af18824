package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "Weather Tips for Pune", Subject("Pune"))
}

func TestBody(t *testing.T) {
	body := Body("It's raining!", "Pune")

	assert.Contains(t, body, "Hello,")
	assert.Contains(t, body, "instant weather tips for Pune")
	assert.Contains(t, body, "It's raining!")
	assert.Contains(t, body, "SkySnap Team")
}
