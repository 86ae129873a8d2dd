package regbench

import (
	"context"

	"github.com/regulatory-genomics/regbench-data/fetch"
)

// 基因组文件直接携带 EBI 的完整地址与真实摘要，不走内容仓注册表。
// FASTA 与注释共用同一组装名键。
var (
	genomeFastaRegistry      = newDatasetRegistry[fetch.RemoteObject]("genome")
	genomeAnnotationRegistry = newDatasetRegistry[fetch.RemoteObject]("genome annotation")
)

func init() {
	genomeFastaRegistry.mustRegister("GRCh38", fetch.RemoteObject{
		FileName: "gencode_v41_GRCh38.fa.gz",
		URL:      "https://ftp.ebi.ac.uk/pub/databases/gencode/Gencode_human/release_41/GRCh38.primary_assembly.genome.fa.gz",
		SHA256:   "sha256:4fac949d7021cbe11117ddab8ec1960004df423d672446cadfbc8cca8007e228",
	})
	genomeAnnotationRegistry.mustRegister("GRCh38", fetch.RemoteObject{
		FileName: "gencode_v41_GRCh38.gff3.gz",
		URL:      "https://ftp.ebi.ac.uk/pub/databases/gencode/Gencode_human/release_41/gencode.v41.basic.annotation.gff3.gz",
		SHA256:   "sha256:b82a655bdb736ca0e463a8f5d00242bedf10fa88ce9d651a017f135c7c4e9285",
	})
}

// ListGenomes lists all available genome assembly names.
func ListGenomes() []string {
	return genomeFastaRegistry.list()
}

// FetchGenomeFASTA fetches the reference genome sequence for the named
// assembly and returns the path of the decompressed FASTA file. The
// compressed download is verified against its published digest before the
// gunzipped copy is derived next to it in the cache.
func (c *Client) FetchGenomeFASTA(ctx context.Context, name string) (string, error) {
	obj, err := genomeFastaRegistry.lookup(name)
	if err != nil {
		return "", err
	}
	return c.fetcher.Retrieve(ctx, obj, fetch.Decompress())
}

// FetchGenomeAnnotation fetches the gene annotation (GFF3) for the named
// assembly. The file stays gzip-compressed, as published upstream.
func (c *Client) FetchGenomeAnnotation(ctx context.Context, name string) (string, error) {
	obj, err := genomeAnnotationRegistry.lookup(name)
	if err != nil {
		return "", err
	}
	return c.fetcher.Retrieve(ctx, obj)
}
