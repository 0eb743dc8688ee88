package photos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhoto_ThumbnailURL(t *testing.T) {
	p := Photo{ID: "10", DownloadURL: "https://picsum.photos/id/10/2500/1667"}

	got, err := p.ThumbnailURL("https://picsum.photos", 40)
	require.NoError(t, err)
	assert.Equal(t, "https://picsum.photos/id/10/40/40", got)
}

func TestPhoto_ImageID(t *testing.T) {
	t.Run("uses the download url, not the id field", func(t *testing.T) {
		p := Photo{ID: "x", DownloadURL: "https://picsum.photos/id/237/200/300"}

		id, err := p.ImageID()
		require.NoError(t, err)
		assert.Equal(t, "237", id)
	})

	for name, u := range map[string]string{
		"empty":        "",
		"one segment":  "https://picsum.photos/id",
		"bad encoding": "https://picsum.photos/%zz",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Photo{DownloadURL: u}.ImageID()
			assert.ErrorIs(t, err, ErrMalformedDownloadURL)
		})
	}
}

func TestListURL(t *testing.T) {
	assert.Equal(t, "https://picsum.photos/v2/list", ListURL("https://picsum.photos"))
}
