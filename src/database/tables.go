package database

import "walkforward/src/datamodels"

var DbTables = []interface{}{
	&datamodels.RunManifest{},
	&datamodels.WindowRecord{},
	&datamodels.TradeRecord{},
}
