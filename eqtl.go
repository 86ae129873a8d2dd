package regbench

import (
	"context"
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// EQTLRecord is one row of a GTEx SuSiE fine-mapping summary. The Parquet
// files carry this schema verbatim; no transform is applied on load.
// Credible-set statistics (pip, cs_id, cs_size) and allelic fold change
// (afc, afc_se) are domain terms passed through unmodified; afc/afc_se are
// null for credible sets whose lead variant lacks an aFC estimate.
type EQTLRecord struct {
	GeneID      string   `parquet:"gene_id"`
	PhenotypeID string   `parquet:"phenotype_id"`
	GeneName    string   `parquet:"gene_name"`
	Biotype     string   `parquet:"biotype"`
	VariantID   string   `parquet:"variant_id"`
	PIP         float64  `parquet:"pip"`
	AF          float64  `parquet:"af"`
	CSID        int64    `parquet:"cs_id"`
	CSSize      int64    `parquet:"cs_size"`
	AFC         *float64 `parquet:"afc,optional"`
	AFCSE       *float64 `parquet:"afc_se,optional"`
}

var eqtlRegistry = newDatasetRegistry[string]("eQTL")

func init() {
	eqtlRegistry.mustRegister("adipose_Subcutaneous",
		"GTEx_v10_SuSiE_eQTL_Adipose_Subcutaneous.v10.eQTLs.SuSiE_summary.parquet")
}

// ListEQTL lists all available eQTL dataset ids.
func ListEQTL() []string {
	return eqtlRegistry.list()
}

// RetrieveEQTL fetches each dataset's Parquet summary and decodes it with its
// embedded schema, returning records keyed by dataset id.
func (c *Client) RetrieveEQTL(ctx context.Context, ids ...string) (map[string][]EQTLRecord, error) {
	datasets := make(map[string][]EQTLRecord, len(ids))
	for _, id := range ids {
		fileName, err := eqtlRegistry.lookup(id)
		if err != nil {
			return nil, err
		}

		path, err := c.fetcher.Fetch(ctx, fileName)
		if err != nil {
			return nil, err
		}

		records, err := parquet.ReadFile[EQTLRecord](path)
		if err != nil {
			return nil, fmt.Errorf("parse eQTL summary %s: %w", fileName, err)
		}
		datasets[id] = records
	}
	return datasets, nil
}
