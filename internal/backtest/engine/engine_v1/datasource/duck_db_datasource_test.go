package datasource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
	"github.com/tradeforge/rangebreak/internal/logger"
	"github.com/tradeforge/rangebreak/internal/types"
)

type DuckDBDataSourceTestSuite struct {
	suite.Suite
	source DataSource
}

func TestDuckDBDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBDataSourceTestSuite))
}

const rangeDataCSV = `instance_id,symbol,range_high,range_low,range_closed_at,bar_time,open,high,low,close,mae,mfe
inst-1,NQ,101.0,100.0,2024-03-04 09:30:00,2024-03-04 09:31:00,100.5,101.6,100.4,101.5,,
inst-1,NQ,101.0,100.0,2024-03-04 09:30:00,2024-03-04 09:32:00,101.5,103.2,101.1,103.0,,
inst-2,NQ,102.0,100.5,2024-03-05 09:30:00,,,,,,-0.4,2.5
`

func (suite *DuckDBDataSourceTestSuite) SetupTest() {
	dataPath := filepath.Join(suite.T().TempDir(), "range_data.csv")
	suite.Require().NoError(os.WriteFile(dataPath, []byte(rangeDataCSV), 0644))

	source, err := NewDuckDBDataSource(":memory:", logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.Require().NoError(source.Initialize(dataPath))

	suite.source = source
}

func (suite *DuckDBDataSourceTestSuite) TearDownTest() {
	if suite.source != nil {
		suite.source.Close()
	}
}

func (suite *DuckDBDataSourceTestSuite) readAll(start, end optional.Option[time.Time]) []types.RangeInstance {
	var instances []types.RangeInstance

	for instance, err := range suite.source.ReadAll(start, end) {
		suite.Require().NoError(err)

		instances = append(instances, instance)
	}

	return instances
}

func (suite *DuckDBDataSourceTestSuite) TestReadAllAssemblesInstances() {
	instances := suite.readAll(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().Len(instances, 2)

	bars := instances[0]
	suite.Equal("inst-1", bars.ID)
	suite.Equal("NQ", bars.Symbol)
	suite.InDelta(101.0, bars.Window.High, 1e-9)
	suite.InDelta(100.0, bars.Window.Low, 1e-9)
	suite.Require().Len(bars.Bars, 2)
	suite.InDelta(101.5, bars.Bars[0].Close, 1e-9)
	suite.InDelta(103.2, bars.Bars[1].High, 1e-9)
	suite.True(bars.Excursion.IsNone())

	excursion := instances[1]
	suite.Equal("inst-2", excursion.ID)
	suite.Empty(excursion.Bars)
	suite.Require().True(excursion.Excursion.IsSome())
	suite.InDelta(-0.4, excursion.Excursion.Unwrap().MAE, 1e-9)
	suite.InDelta(2.5, excursion.Excursion.Unwrap().MFE, 1e-9)
}

func (suite *DuckDBDataSourceTestSuite) TestCount() {
	count, err := suite.source.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(2, count)
}

func (suite *DuckDBDataSourceTestSuite) TestTimeBoundedRead() {
	bound := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	later := suite.readAll(optional.Some(bound), optional.None[time.Time]())
	suite.Require().Len(later, 1)
	suite.Equal("inst-2", later[0].ID)

	earlier := suite.readAll(optional.None[time.Time](), optional.Some(bound))
	suite.Require().Len(earlier, 1)
	suite.Equal("inst-1", earlier[0].ID)

	count, err := suite.source.Count(optional.Some(bound), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(1, count)
}

func (suite *DuckDBDataSourceTestSuite) TestInitializeMissingFile() {
	source, err := NewDuckDBDataSource(":memory:", logger.NewNopLogger())
	suite.Require().NoError(err)

	defer source.Close()

	suite.Error(source.Initialize("/nonexistent/range_data.csv"))
}
