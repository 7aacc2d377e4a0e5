package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fwojciec/adscan"
	main "github.com/fwojciec/adscan/cmd/adscan"
	"github.com/fwojciec/adscan/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func storedAds() []*adscan.Ad {
	return []*adscan.Ad{
		{
			ID:          ptr("ad-1"),
			ContentType: adscan.ContentTypeImage,
			ContentData: adscan.ContentData{Src: "http://cdn.net/a.png"},
			TargetURL:   "http://ads.net/land",
			PageURL:     ptr("https://pub.com/article"),
		},
		{
			ID:          ptr("ad-2"),
			ContentType: adscan.ContentTypeImage,
			ContentData: adscan.ContentData{Src: "http://cdn.net/b.png"},
			TargetURL:   "https://pub.com/click?id=1",
			PageURL:     ptr("https://pub.com/article"),
		},
	}
}

func TestListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists ads with ID, type, target and page", func(t *testing.T) {
		t.Parallel()

		ads := &mock.AdService{
			FindAdsFn: func(_ context.Context, _ adscan.AdFilter) ([]*adscan.Ad, error) {
				return storedAds(), nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Ads:    ads,
		}

		err := (&main.ListCmd{Limit: 50}).Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, "ad-1")
		assert.Contains(t, output, "ad-2")
		assert.Contains(t, output, "ads.net/land")
		assert.Contains(t, output, "pub.com/click?id=1")
		assert.Contains(t, output, "pub.com/article")
		assert.Contains(t, output, "img")
	})

	t.Run("passes page, target and pagination to the filter", func(t *testing.T) {
		t.Parallel()

		var got adscan.AdFilter
		ads := &mock.AdService{
			FindAdsFn: func(_ context.Context, filter adscan.AdFilter) ([]*adscan.Ad, error) {
				got = filter
				return nil, nil
			},
		}

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			Ads:    ads,
		}

		cmd := &main.ListCmd{Page: "https://pub.com/a", Target: "http://ads.net/x", Limit: 10, Offset: 20}
		err := cmd.Run(deps)

		require.NoError(t, err)
		require.NotNil(t, got.PageURL)
		require.NotNil(t, got.TargetURL)
		assert.Equal(t, "https://pub.com/a", *got.PageURL)
		assert.Equal(t, "http://ads.net/x", *got.TargetURL)
		assert.Equal(t, 10, got.Limit)
		assert.Equal(t, 20, got.Offset)
	})

	t.Run("prints one JSON record per line", func(t *testing.T) {
		t.Parallel()

		ads := &mock.AdService{
			FindAdsFn: func(_ context.Context, _ adscan.AdFilter) ([]*adscan.Ad, error) {
				return storedAds(), nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Ads:    ads,
		}

		err := (&main.ListCmd{JSON: true}).Run(deps)

		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		require.Len(t, lines, 2)
		var ad adscan.Ad
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &ad))
		assert.Equal(t, "http://ads.net/land", ad.TargetURL)
		assert.Equal(t, "http://cdn.net/a.png", ad.ContentData.Src)
	})

	t.Run("shows helpful message when no ads exist", func(t *testing.T) {
		t.Parallel()

		ads := &mock.AdService{
			FindAdsFn: func(_ context.Context, _ adscan.AdFilter) ([]*adscan.Ad, error) {
				return []*adscan.Ad{}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Ads:    ads,
		}

		err := (&main.ListCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No ads found")
		assert.Contains(t, stdout.String(), "adscan scan")
	})

	t.Run("returns error when service fails", func(t *testing.T) {
		t.Parallel()

		ads := &mock.AdService{
			FindAdsFn: func(_ context.Context, _ adscan.AdFilter) ([]*adscan.Ad, error) {
				return nil, errors.New("database error")
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Ads:    ads,
		}

		err := (&main.ListCmd{}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error")
	})
}

func TestCountCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the number of ads on a page", func(t *testing.T) {
		t.Parallel()

		ads := &mock.AdService{
			CountAdsFn: func(_ context.Context, filter adscan.AdFilter) (int, error) {
				if filter.PageURL != nil && *filter.PageURL == "https://pub.com/a" {
					return 3, nil
				}
				return 7, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Ads:    ads,
		}

		err := (&main.CountCmd{Page: "https://pub.com/a"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "3\n", stdout.String())
	})

	t.Run("counts all ads without a page", func(t *testing.T) {
		t.Parallel()

		ads := &mock.AdService{
			CountAdsFn: func(_ context.Context, filter adscan.AdFilter) (int, error) {
				assert.Nil(t, filter.PageURL)
				return 7, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Ads:    ads,
		}

		err := (&main.CountCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "7\n", stdout.String())
	})
}
