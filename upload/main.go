package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"tsload/client"
	"tsload/ingest"
	"tsload/mapping"
	"tsload/pipeline"
	"tsload/ts"
	"tsload/utils"
	"tsload/waveform"
)

// Config is the full command line surface of the tool. It is validated once
// at startup and read-only afterwards.
type Config struct {
	Series string   `arg:"positional,required" help:"Name or GUID of the target time series"`
	Values []string `arg:"positional" help:"Literal point values, or the keyword 'gap'"`

	Server string `arg:"--server,env:TSLOAD_SERVER" help:"Base URL of the time-series store"`
	Token  string `arg:"--token,env:TSLOAD_TOKEN" help:"Bearer token for the store"`

	Start    *utils.Timestamp `arg:"--start" help:"Start time for manual and waveform points. Defaults to today at midnight UTC"`
	Interval utils.Interval   `arg:"--interval" default:"PT1M" help:"Sample interval as an ISO-8601 duration"`

	WaveType          string  `arg:"--wave-type" help:"Generate a synthetic waveform: sine, square, sawtooth or text"`
	WavePoints        int     `arg:"--wave-points" help:"Total number of waveform samples. Overrides --wave-periods"`
	WavePeriods       float64 `arg:"--wave-periods" default:"1" help:"Number of waveform periods to generate"`
	WavePeriodSamples float64 `arg:"--wave-period-samples" default:"360" help:"Number of samples per waveform period"`
	WaveScalar        float64 `arg:"--wave-scalar" default:"1" help:"Waveform amplitude multiplier"`
	WaveOffset        float64 `arg:"--wave-offset" help:"Waveform vertical offset"`
	WavePhase         float64 `arg:"--wave-phase" help:"Waveform phase offset as a fraction of a period"`
	WaveText          string  `arg:"--wave-text" help:"String rendered by the text waveform"`
	WaveChannel       string  `arg:"--wave-channel" default:"y" help:"Glyph channel emitted by the text waveform: x or y"`

	CsvPath           string `arg:"--csv" help:"Delimited file to ingest points from"`
	CsvDateTimeCol    int    `arg:"--csv-datetime-col" help:"1-based column holding the combined date and time"`
	CsvDateTimeFormat string `arg:"--csv-datetime-format" help:"Go layout for the datetime column"`
	CsvDateCol        int    `arg:"--csv-date-col" help:"1-based column holding a date only"`
	CsvTimeCol        int    `arg:"--csv-time-col" help:"1-based column holding a time of day only"`
	CsvDefaultTime    string `arg:"--csv-default-time" help:"Time of day assumed when only a date is present"`
	CsvValueCol       int    `arg:"--csv-value-col" default:"2" help:"1-based column holding the value"`
	CsvGradeCol       int    `arg:"--csv-grade-col" help:"1-based column holding the grade code"`
	CsvQualifiersCol  int    `arg:"--csv-qualifiers-col" help:"1-based column holding the qualifiers"`
	CsvComment        string `arg:"--csv-comment" default:"#" help:"Rows starting with this prefix are skipped"`
	CsvSkip           int    `arg:"--csv-skip" help:"Number of leading rows to skip"`
	CsvSep            string `arg:"--csv-sep" default:"," help:"Field separator. Needs to be quoted"`
	CsvQualifierSep   string `arg:"--csv-qualifier-sep" default:"+" help:"Separator between qualifiers within the qualifiers column"`
	CsvNan            string `arg:"--csv-nan" default:"NaN" help:"Sentinel token turning a row into a gap point"`
	CsvIgnoreInvalid  bool   `arg:"--csv-ignore-invalid" help:"Skip and count malformed rows instead of failing"`

	SourceSeries string           `arg:"--source-series" help:"Copy points from this existing series"`
	SourceServer string           `arg:"--source-server" help:"Store holding the source series. Defaults to --server"`
	SourceToken  string           `arg:"--source-token" help:"Bearer token for the source store"`
	SourceFrom   *utils.Timestamp `arg:"--source-from" help:"Copy points starting from this time"`
	SourceTo     *utils.Timestamp `arg:"--source-to" help:"Copy points up to this time"`

	GradeRules        []string `arg:"--grade-map,separate" help:"Grade mapping rule 'low,high:mapped'. ':mapped' sets the default. Repeatable"`
	QualifierRules    []string `arg:"--qualifier-map,separate" help:"Qualifier mapping rule 'source:mapped'. Repeatable"`
	DefaultQualifiers []string `arg:"--default-qualifiers" help:"Qualifiers given to points that carry none"`
	IgnoreGrades      bool     `arg:"--ignore-grades" help:"Strip grades from all points"`
	IgnoreQualifiers  bool     `arg:"--ignore-qualifiers" help:"Strip qualifiers from all points"`
	Realign           bool     `arg:"--realign" help:"Shift all points so the first one lands on --start"`
	Dedup             bool     `arg:"--dedup" help:"Drop points sharing a time with the preceding point"`

	BatchSize int              `arg:"--batch-size" default:"500" help:"Maximum number of points per append request"`
	Wait      bool             `arg:"--wait" help:"Block until the store reports the append complete"`
	Timeout   utils.Interval   `arg:"--timeout" default:"PT5M" help:"Deadline for --wait as an ISO-8601 duration"`
	From      *utils.Timestamp `arg:"--from" help:"Explicit start of the overwritten range"`
	To        *utils.Timestamp `arg:"--to" help:"Explicit end of the overwritten range"`
	SaveCsv   string           `arg:"--save-csv" help:"Also write the final point stream to this CSV file"`
	DryRun    bool             `arg:"--dry-run" help:"Skip the upload. Useful together with --save-csv"`
	Verbose   bool             `arg:"-v" help:"Increase verbosity level"`

	// Populated by Validate
	shape        waveform.Shape
	channel      waveform.Channel
	grades       *mapping.GradeMap
	qualifiers   *mapping.QualifierMap
	format       *ingest.Format
	start        time.Time
	waitDeadline time.Duration
}

func (Config) Description() string {
	return `Synthesize, ingest, transform and upload points to a time-series store.
Points are collected from literal values, a synthetic waveform, a delimited
file and an existing series, transformed, and delivered in batches.
The server URL and token can also be set through the environment variables
    - "TSLOAD_SERVER"
    - "TSLOAD_TOKEN"`
}

// Validate checks the configuration and expands the mapping rules, before
// any network or file IO is attempted
func (config *Config) Validate() error {
	if config.Start != nil {
		config.start = config.Start.Time()
	} else {
		now := time.Now().UTC()
		config.start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	if config.BatchSize <= 0 {
		return errors.New("'--batch-size' must be positive")
	}

	if config.WaveType != "" {
		shape, err := waveform.ParseShape(config.WaveType)
		if err != nil {
			return err
		}
		config.shape = shape

		channel, err := waveform.ParseChannel(config.WaveChannel)
		if err != nil {
			return err
		}
		config.channel = channel

		if shape == waveform.Text && config.WaveText == "" {
			return errors.New("the text waveform requires '--wave-text'")
		}
	} else if config.WaveText != "" {
		return errors.New("'--wave-text' requires '--wave-type text'")
	}

	if config.CsvPath != "" {
		format := &ingest.Format{
			DateTimeCol:    config.CsvDateTimeCol,
			DateTimeLayout: config.CsvDateTimeFormat,
			DateCol:        config.CsvDateCol,
			TimeCol:        config.CsvTimeCol,
			DefaultTime:    config.CsvDefaultTime,
			ValueCol:       config.CsvValueCol,
			GradeCol:       config.CsvGradeCol,
			QualifiersCol:  config.CsvQualifiersCol,
			Comment:        config.CsvComment,
			SkipRows:       config.CsvSkip,
			Delimiter:      config.CsvSep,
			QualifierSep:   config.CsvQualifierSep,
			NanToken:       config.CsvNan,
			IgnoreInvalid:  config.CsvIgnoreInvalid,
		}
		// Neither column given: assume a combined datetime in the first column
		if format.DateTimeCol == 0 && format.DateCol == 0 {
			format.DateTimeCol = 1
		}
		if err := format.Validate(); err != nil {
			return err
		}
		config.format = format
	}

	config.grades = mapping.NewGradeMap()
	for _, rule := range config.GradeRules {
		if err := config.grades.AddRule(rule); err != nil {
			return err
		}
	}

	config.qualifiers = mapping.NewQualifierMap()
	for _, rule := range config.QualifierRules {
		if err := config.qualifiers.AddRule(rule); err != nil {
			return err
		}
	}
	config.qualifiers.SetDefaults(config.DefaultQualifiers)

	overwrite := utils.NewTimeSpan(config.From, config.To)
	if !overwrite.Valid() {
		return errors.New("'--from' must not be after '--to'")
	}
	source := utils.NewTimeSpan(config.SourceFrom, config.SourceTo)
	if !source.Valid() {
		return errors.New("'--source-from' must not be after '--source-to'")
	}

	deadline, err := config.Timeout.AddTo(time.Time{})
	if err != nil {
		return err
	}
	config.waitDeadline = deadline.Sub(time.Time{})
	if config.Wait && config.waitDeadline <= 0 {
		return errors.New("'--timeout' must be positive")
	}

	needServer := !config.DryRun || (config.SourceSeries != "" && config.SourceServer == "")
	if needServer && config.Server == "" {
		return errors.New("no server configured, pass '--server' or set TSLOAD_SERVER")
	}

	return nil
}

func (config *Config) Execute(ctx context.Context) error {
	if err := config.Validate(); err != nil {
		return err
	}

	var c *client.Client
	if config.Server != "" {
		var opts []client.Option
		if config.Token != "" {
			opts = append(opts, client.WithToken(config.Token))
		}
		c = client.New(config.Server, opts...)
	}

	points, err := config.collectPoints(ctx, c)
	if err != nil {
		return err
	}

	points = pipeline.Apply(points, config.transformOptions())

	if config.SaveCsv != "" {
		if err := config.writeCsv(points); err != nil {
			return err
		}
	}

	if config.DryRun {
		fmt.Printf("Dry run: %v points collected, nothing uploaded\n", len(points))
		return nil
	}

	series, err := c.ResolveSeries(ctx, config.Series)
	if err != nil {
		return fmt.Errorf("could not resolve series %q: %w", config.Series, err)
	}

	var overwrite *client.TimeRange
	if config.From != nil || config.To != nil {
		overwrite = &client.TimeRange{Start: config.From.Inner(), End: config.To.Inner()}
	}

	policy := BatchPolicy{Size: config.BatchSize, Wait: config.Wait, Timeout: config.waitDeadline}
	result, err := AppendAll(ctx, c, series, points, overwrite, policy)
	if err != nil {
		return err
	}

	config.report(result)
	return nil
}

// collectPoints concatenates the active sources in fixed precedence order:
// manual values, waveform, tabular file, source copy
func (config *Config) collectPoints(ctx context.Context, c *client.Client) ([]ts.Point, error) {
	var points []ts.Point

	if len(config.Values) > 0 {
		manual, err := pipeline.CollectManual(config.Values, config.start, config.Interval)
		if err != nil {
			return nil, err
		}
		if config.Verbose {
			slog.Info(fmt.Sprintf("Collected %d literal points", len(manual)))
		}
		points = append(points, manual...)
	}

	if config.WaveType != "" {
		generated, err := waveform.Generate(&waveform.Spec{
			Shape:            config.shape,
			Start:            config.start,
			Interval:         config.Interval,
			Points:           config.WavePoints,
			Periods:          config.WavePeriods,
			SamplesPerPeriod: config.WavePeriodSamples,
			Scalar:           config.WaveScalar,
			Offset:           config.WaveOffset,
			Phase:            config.WavePhase,
			Text:             config.WaveText,
			Channel:          config.channel,
		})
		if err != nil {
			return nil, err
		}
		if config.Verbose {
			slog.Info(fmt.Sprintf("Generated %d %s waveform points", len(generated), config.WaveType))
		}
		points = append(points, generated...)
	}

	if config.CsvPath != "" {
		file, err := os.Open(config.CsvPath)
		if err != nil {
			return nil, err
		}
		parsed, skipped, err := ingest.ReadPoints(file, config.format)
		file.Close()
		if err != nil {
			return nil, err
		}
		if skipped > 0 {
			slog.Warn(fmt.Sprintf("Skipped %d invalid rows in %s", skipped, config.CsvPath))
		}
		points = append(points, parsed...)
	}

	if config.SourceSeries != "" {
		copied, err := fetchSourcePoints(ctx, c, &SourceSpec{
			Series: config.SourceSeries,
			Server: config.SourceServer,
			Token:  config.SourceToken,
			Span:   utils.NewTimeSpan(config.SourceFrom, config.SourceTo),
		})
		if err != nil {
			return nil, err
		}
		points = append(points, copied...)
	}

	return points, nil
}

func (config *Config) transformOptions() *pipeline.Options {
	opts := &pipeline.Options{
		IgnoreGrades:     config.IgnoreGrades,
		IgnoreQualifiers: config.IgnoreQualifiers,
		Grades:           config.grades,
		Qualifiers:       config.qualifiers,
		Deduplicate:      config.Dedup,
	}
	if config.Realign {
		opts.RealignTo = &config.start
	}
	return opts
}

func (config *Config) writeCsv(points []ts.Point) error {
	file, err := os.Create(config.SaveCsv)
	if err != nil {
		return err
	}

	sep := ','
	if config.CsvSep != "" {
		sep = rune(config.CsvSep[0])
	}
	err = ts.WriteCSV(file, points, sep)
	if closeErr := file.Close(); closeErr != nil {
		return errors.Join(err, closeErr)
	}
	if err == nil {
		slog.Info(fmt.Sprintf("Wrote %d points to %s", len(points), config.SaveCsv))
	}
	return err
}

func (config *Config) report(result *Result) {
	outputStr := fmt.Sprintf("%v points delivered in %v batches", result.PointsSent, result.Batches)
	slog.Info(outputStr)
	fmt.Println(outputStr)

	switch {
	case result.TimedOut:
		fmt.Println("Timed out waiting for the store to complete the append, delivered batches stand")
	case result.Complete:
		fmt.Printf("Append complete, %v points appended by the store\n", result.PointsAppended)
	}
}
