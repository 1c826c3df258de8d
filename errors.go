package tamar

import (
	"fmt"

	"github.com/railtwin/tamar/errs"
)

func unknownDatasetErr(datasetID uint32) error {
	return fmt.Errorf("%w: dataset id %d", errs.ErrUnknownDataset, datasetID)
}
