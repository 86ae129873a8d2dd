// Package regbench retrieves and normalizes genomics benchmark datasets:
// CAGE and total RNA-seq coverage tracks, GTEx fine-mapped eQTL summaries,
// CRISPR enhancer-screening results, and reference genome files.
//
// Each assay exposes a static registry of dataset ids. ListCAGE, ListRNA,
// ListEQTL, ListEnhancer, and ListGenomes enumerate them offline; the
// Retrieve/Fetch methods on Client resolve an id to its remote files, download
// and cache them through the fetch package with SHA-256 verification, and
// parse structured formats (TSV screening tables, Parquet eQTL summaries)
// into fixed, documented schemas. Coverage tracks and genome files are
// returned as local paths without interpretation.
//
// All retrieval goes through an explicitly constructed Client so tests can
// substitute the Fetcher; there is no package-level download state.
package regbench
