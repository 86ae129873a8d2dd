package regbench

import "context"

// StrandedTracks holds the local paths of a plus/minus strand coverage track
// pair. Track files are binary (.w5z) and returned as-is, without parsing.
type StrandedTracks struct {
	Plus  string
	Minus string
}

// trackPair 指向注册表中正/负链轨道文件名。
type trackPair struct {
	plus  string
	minus string
}

var (
	cageRegistry = newDatasetRegistry[trackPair]("CAGE")
	rnaRegistry  = newDatasetRegistry[trackPair]("RNA")
)

func init() {
	cageRegistry.mustRegister("K562", trackPair{
		plus:  "CAGE_K562_+.w5z",
		minus: "CAGE_K562_-.w5z",
	})

	rnaRegistry.mustRegister("adipose_Subcutaneous", trackPair{
		plus:  "total_RNA_seq_subcutaneous_adipose_tissue_+.w5z",
		minus: "total_RNA_seq_subcutaneous_adipose_tissue_-.w5z",
	})
}

// ListCAGE lists all available CAGE dataset ids.
func ListCAGE() []string {
	return cageRegistry.list()
}

// RetrieveCAGE fetches the stranded CAGE track pair for each id and returns
// their local paths keyed by dataset id. An unknown id fails with a
// *DatasetNotFoundError listing the valid ids.
func (c *Client) RetrieveCAGE(ctx context.Context, ids ...string) (map[string]StrandedTracks, error) {
	return c.retrieveTracks(ctx, cageRegistry, ids)
}

// ListRNA lists all available total RNA-seq dataset ids.
func ListRNA() []string {
	return rnaRegistry.list()
}

// RetrieveRNA fetches the stranded RNA-seq track pair for each id and returns
// their local paths keyed by dataset id.
func (c *Client) RetrieveRNA(ctx context.Context, ids ...string) (map[string]StrandedTracks, error) {
	return c.retrieveTracks(ctx, rnaRegistry, ids)
}

func (c *Client) retrieveTracks(ctx context.Context, registry *datasetRegistry[trackPair], ids []string) (map[string]StrandedTracks, error) {
	datasets := make(map[string]StrandedTracks, len(ids))
	for _, id := range ids {
		pair, err := registry.lookup(id)
		if err != nil {
			return nil, err
		}

		plus, err := c.fetcher.Fetch(ctx, pair.plus)
		if err != nil {
			return nil, err
		}
		minus, err := c.fetcher.Fetch(ctx, pair.minus)
		if err != nil {
			return nil, err
		}
		datasets[id] = StrandedTracks{Plus: plus, Minus: minus}
	}
	return datasets, nil
}
