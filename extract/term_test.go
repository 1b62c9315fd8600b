package extract

import (
	"testing"

	"github.com/lai323/lutego/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const termPage = `<html><body>
<form id="term-form" method="POST">
  <select id="language_id" name="language_id">
    <option value="1">English</option>
    <option value="3" selected>French</option>
  </select>
  <input id="text" name="text" type="text" value="chats">
  <input id="parentslist" name="parentslist" type="hidden" value="[{&#34;value&#34;: &#34;chat&#34;}, {&#34;value&#34;: &#34;chatte&#34;}]">
  <input id="romanization" name="romanization" value="">
  <textarea id="translation" name="translation">
cats</textarea>
  <ul id="status">
    <li><input type="radio" name="status" value="1"></li>
    <li><input type="radio" name="status" value="3" checked></li>
    <li><input type="radio" name="status" value="99"></li>
  </ul>
  <input id="termtagslist" name="termtagslist" type="hidden" value="[{&#34;value&#34;: &#34;animal&#34;}]">
  <input id="sync_status" name="sync_status" type="checkbox" checked>
</form>
</body></html>`

func TestTermForm(t *testing.T) {
	form, err := New(nil).TermForm(termPage, 17, "Chats")
	require.NoError(t, err)

	assert.Equal(t, 17, form.TermID)
	assert.Equal(t, "chats", form.Text)
	assert.Equal(t, 3, form.LanguageID)
	assert.Equal(t, "cats", form.Translation)
	assert.Equal(t, model.StatusLearning, form.Status)
	assert.Equal(t, []string{"chat", "chatte"}, form.Parents)
	assert.Equal(t, []string{"animal"}, form.Tags)
	assert.True(t, form.SyncStatus)
	assert.Equal(t, "", form.Sentence)
}

func TestTermFormDefaults(t *testing.T) {
	form, err := New(nil).TermForm(`<html><body><form></form></body></html>`, 5, " clicked ")
	require.NoError(t, err)

	assert.Equal(t, "clicked", form.Text)
	assert.Equal(t, "", form.Translation)
	assert.Equal(t, model.DefaultStatus, form.Status)
	assert.Equal(t, 1, form.LanguageID)
	assert.Empty(t, form.Parents)
	assert.Empty(t, form.Tags)
	assert.False(t, form.SyncStatus)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		value string
		want  model.Status
	}{
		{"1", model.StatusNew1},
		{"2", model.StatusNew2},
		{"5", model.StatusLearned},
		{"98", model.StatusIgnored},
		{"99", model.StatusWellKnow},
		{"7", model.DefaultStatus},
		{"x", model.DefaultStatus},
	}
	for _, tt := range tests {
		doc, err := Parse(`<ul id="status"><li><input type="radio" name="status" value="` + tt.value + `" checked></li></ul>`)
		require.NoError(t, err)
		assert.Equal(t, tt.want, Status(doc), "value %q", tt.value)
	}

	doc, err := Parse(`<ul id="status"><li><input type="radio" name="status" value="4"></li></ul>`)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultStatus, Status(doc))
}

func TestParents(t *testing.T) {
	doc, err := Parse(`<input id="parentslist" value="[{&#34;value&#34;: &#34;X&#34;}]"/>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, Parents(doc))

	doc, err = Parse(`<input id="parentslist" value="[{&#34;value&#34;: &#34;a&#34;}, {&#34;value&#34;: &#34;b&#34;}, {&#34;value&#34;: &#34;c&#34;}]"/>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, Parents(doc))

	doc, err = Parse(`<input id="parentslist" value=""/>`)
	require.NoError(t, err)
	assert.Empty(t, Parents(doc))
}

func TestTagListValueDoubleEncoded(t *testing.T) {
	values, err := TagListValue(`[{&quot;value&quot;: &quot;R&amp;D&quot;}]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"R&D"}, values)

	values, err = TagListValue(`[{"value": "R&amp;D"}]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"R&amp;D"}, values)

	_, err = TagListValue(`not json`)
	assert.Error(t, err)
}
