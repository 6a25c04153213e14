package i18n

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestValidate_TablesComplete(t *testing.T) {
	assert.NilError(t, Validate())
}

func TestValidate_ReportsMissingKey(t *testing.T) {
	tables["de"]["test.only"] = "nur Test"
	defer delete(tables["de"], "test.only")

	assert.ErrorContains(t, Validate(), "en:test.only")
}

func TestText(t *testing.T) {
	tests := []struct {
		key  Key
		lang string
		want string
	}{
		{FolderOther, "en", "Other"},
		{FolderOther, "de", "Sonstige"},
		{FolderOther, "de-AT", "Sonstige"},
		{FolderOther, "FR", "Other"},
		{FolderOther, "", "Other"},
		{Key("no.such.key"), "de", "no.such.key"},
	}

	for _, tt := range tests {
		t.Run(string(tt.key)+"/"+tt.lang, func(t *testing.T) {
			assert.Equal(t, Text(tt.key, tt.lang), tt.want)
		})
	}
}

func TestTextf(t *testing.T) {
	assert.Equal(t, Textf(ChatDeleted, "en", 2), "Deleted 2 bookmark(s).")
	assert.Equal(t, Textf(Selected, "de", 3), "3 ausgewählt")
}

func TestLanguages(t *testing.T) {
	assert.DeepEqual(t, Languages(), []string{"de", "en"})
	assert.Assert(t, Supported("DE"))
	assert.Assert(t, !Supported("fr"))
}
