package pdftext

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePages struct {
	pages []string
	errAt int
}

func (f fakePages) NumPage() int { return len(f.pages) }

func (f fakePages) PageText(num int) (string, error) {
	if num == f.errAt {
		return "", errors.New("bad font")
	}
	return f.pages[num-1], nil
}

func TestExtractPagesJoinsNonEmptyPages(t *testing.T) {
	res, err := extractPages(fakePages{pages: []string{"Revenue grew 10% in Q1.", "", "Costs fell."}})
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew 10% in Q1.\nCosts fell.\n", res.Text)
	assert.Equal(t, 3, res.PageCount)
	assert.Equal(t, 2, res.PagesWithText)
}

func TestExtractPagesNoText(t *testing.T) {
	res, err := extractPages(fakePages{pages: []string{"", ""}})
	assert.ErrorIs(t, err, ErrNoText)
	assert.Equal(t, 2, res.PageCount)
}

func TestExtractPagesZeroPages(t *testing.T) {
	_, err := extractPages(fakePages{})
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtractPagesPropagatesPageError(t *testing.T) {
	_, err := extractPages(fakePages{pages: []string{"a", "b"}, errAt: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
	assert.NotErrorIs(t, err, ErrNoText)
}

func TestExtractRejectsNonPDF(t *testing.T) {
	_, err := New().Extract([]byte("just some text, not a pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "%PDF")
}

func TestExtractCorruptPDF(t *testing.T) {
	_, err := New().Extract([]byte("%PDF-1.4\nthis is not really a pdf body"))
	require.Error(t, err)
}
