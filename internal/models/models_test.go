package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModels(t *testing.T) {
	t.Run("ShortLink TableName", func(t *testing.T) {
		link := ShortLink{}
		assert.Equal(t, "short_links", link.TableName())
	})

	t.Run("APIKey TableName", func(t *testing.T) {
		key := APIKey{}
		assert.Equal(t, "api_keys", key.TableName())
	})

	t.Run("Unlimited link has zero uses", func(t *testing.T) {
		link := ShortLink{}
		assert.Equal(t, 0, link.Uses)
		assert.Equal(t, 0, link.TimesUsed)
	})
}
