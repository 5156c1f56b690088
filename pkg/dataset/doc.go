// Package dataset knows the LIBERO benchmark datasets: which archives make
// up each selectable set, where they are published, how they unpack on disk
// and how to tell whether a download directory holds them in full.
//
// # Selectors
//
// A Selector names what to fetch: "all", "libero_goal", "libero_spatial",
// "libero_object" or "libero_100". "all" expands to every archive and
// "libero_100" unpacks into two datasets, libero_10 and libero_90.
//
// # Usage
//
//	f := dataset.NewFetcher(dataset.DefaultCatalog(), dataset.FetchOptions{})
//	if err := f.Download(ctx, dir, dataset.All); err != nil {
//	    ...
//	}
//	report, err := dataset.Check(dir, log)
package dataset
