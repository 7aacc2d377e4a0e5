package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/fwojciec/adscan/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkCreateAd measures ad inserts into a file-backed database, the
// write pattern of a scan that reports many ads per page.
func BenchmarkCreateAd(b *testing.B) {
	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	svc := sqlite.NewAdService(db)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ad := newAd(fmt.Sprintf("http://ads.net/%d", i), "http://pub.com/", int64(i))
		if err := svc.CreateAd(ctx, ad); err != nil {
			b.Fatal(err)
		}
	}
}
