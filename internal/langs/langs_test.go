package langs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferredLanguagesFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, []string{"fr"}, PreferredLanguages("FR"))
	assert.Equal(t, []string{"de", "fr", "it", "rm", "en"}, PreferredLanguages("CH"))
	assert.Equal(t, []string{"en"}, PreferredLanguages("ZZ"))
}

func TestSelectPrefersCountryLanguage(t *testing.T) {
	names := map[string]string{"en": "Town Hall", "fr": "Mairie"}
	assert.Equal(t, "Mairie", Select("FR", names))
	assert.Equal(t, "Town Hall", Select("US", names))
}

func TestSelectFallsBackToAnyAvailable(t *testing.T) {
	names := map[string]string{"ja": "市役所"}
	assert.Equal(t, "市役所", Select("FR", names))
}

func TestSelectEmptyMap(t *testing.T) {
	assert.Equal(t, "", Select("FR", nil))
}
