package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/thushan/traigo/internal/app/services"
	"github.com/thushan/traigo/internal/core/domain"
)

const dateLayout = "2006-01-02"

const usageText = `traigo - Taiwan Railway timetable companion

Usage:
  traigo journey <from> <to> [--date YYYY-MM-DD] [--sort departure|arrival|duration|transfers] [--limit N] [--json]
  traigo timetable <from> <to> [--date YYYY-MM-DD] [--json]
  traigo train <train-no> [--json]
  traigo live <train-no> [--json]
  traigo delays <train-no> [<train-no>...] [--json]
  traigo board <station> [--json]
  traigo station <query> [--search] [--limit N] [--json]
  traigo fare <from> <to> [--json]
  traigo tpass <region> <from> <to> [--json]
  traigo alerts [--station <station>] [--json]
  traigo exits <station> [--json]
  traigo metrics [--json]
  traigo health [--json]
  traigo cache stats|prune|clear
  traigo version

Stations accept ids, names, nicknames and close misspellings.
Credentials come from TDX_CLIENT_ID/TDX_CLIENT_SECRET (suffix _2.._10 for more slots).`

// Run dispatches one command invocation. The returned error has already been
// rendered by the time main maps it to an exit code.
func (a *App) Run(ctx context.Context, args []string) error {
	a.jsonOut = hasJSONFlag(args)

	if len(args) == 0 {
		fmt.Println(usageText)
		return nil
	}

	command, rest := args[0], args[1:]
	switch command {
	case "journey":
		return a.runJourney(ctx, rest)
	case "timetable":
		return a.runTimetable(ctx, rest)
	case "train":
		return a.runTrain(ctx, rest)
	case "live":
		return a.runLive(ctx, rest)
	case "delays":
		return a.runDelays(ctx, rest)
	case "board":
		return a.runBoard(ctx, rest)
	case "station":
		return a.runStation(ctx, rest)
	case "fare":
		return a.runFare(ctx, rest)
	case "tpass":
		return a.runTpass(ctx, rest)
	case "alerts":
		return a.runAlerts(ctx, rest)
	case "exits":
		return a.runExits(ctx, rest)
	case "metrics":
		return a.runMetrics(rest)
	case "health":
		return a.runHealth(ctx, rest)
	case "cache":
		return a.runCache(ctx, rest)
	case "help", "--help", "-h":
		fmt.Println(usageText)
		return nil
	default:
		fmt.Println(usageText)
		return domain.NewError(domain.CodeBadInput, fmt.Sprintf("unknown command %q", command))
	}
}

func hasJSONFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--json" {
			return true
		}
	}
	return false
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Bool("json", false, "emit JSON instead of text")
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string, positional int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, domain.WrapError(domain.CodeBadInput, "invalid flags", err)
	}
	if fs.NArg() < positional {
		return nil, domain.NewError(domain.CodeBadInput,
			fmt.Sprintf("%s expects %d argument(s), got %d", fs.Name(), positional, fs.NArg()))
	}
	return fs.Args(), nil
}

func (a *App) runJourney(ctx context.Context, args []string) error {
	fs := newFlagSet("journey")
	date := fs.String("date", time.Now().Format(dateLayout), "service date")
	sortKey := fs.String("sort", "departure", "sort by departure, arrival, duration or transfers")
	limit := fs.Int("limit", 10, "maximum options to show")
	pos, err := parseFlags(fs, args, 2)
	if err != nil {
		return err
	}

	resolver, err := a.stationResolver(ctx)
	if err != nil {
		return err
	}
	from, err := resolver.Resolve(pos[0])
	if err != nil {
		return err
	}
	to, err := resolver.Resolve(pos[1])
	if err != nil {
		return err
	}

	branch, err := a.branchLineResolver(ctx)
	if err != nil {
		return err
	}
	timetables := services.NewTimetableService(a.client, branch)

	direct, strategy, err := timetables.QueryOD(ctx, from.Station, to.Station, *date)
	if err != nil {
		return err
	}

	transfers := a.transferLegs(ctx, timetables, branch, resolver, from.Station, to.Station, *date)

	plannerOpts := services.JourneyOptions{
		MinTransferTime: a.cfg.Journey.MinTransferMinutes,
		MaxTransferTime: a.cfg.Journey.MaxTransferMinutes,
	}
	if transferTimes := a.transferTimes(ctx); transferTimes != nil {
		plannerOpts.TransferTimes = transferTimes
	}
	planner := services.NewJourneyPlanner(plannerOpts)

	options := planner.FindJourneyOptions(direct, transfers)
	services.SortJourneys(options, journeySortKey(*sortKey))
	if len(options) > *limit {
		options = options[:*limit]
	}

	return a.renderJourneys(from.Station, to.Station, *date, strategy, options)
}

// transferLegs proposes one-transfer routes through the branch-line junction
// when either end sits on a branch. Leg lookups are secondary queries; a
// failing leg drops the proposal, never the command.
func (a *App) transferLegs(ctx context.Context, timetables *services.TimetableService, branch *services.BranchLineResolver, resolver *services.StationResolver, from, to domain.Station, date string) []domain.TransferLeg {
	junctionID := branch.GetJunctionStation(from.ID)
	if junctionID == "" {
		junctionID = branch.GetJunctionStation(to.ID)
	}
	if junctionID == "" || junctionID == from.ID || junctionID == to.ID {
		return nil
	}

	junction, ok := resolver.GetByID(junctionID)
	if !ok {
		return nil
	}

	first, _, err := timetables.QueryOD(ctx, from, junction, date)
	if err != nil {
		a.logger.Warn("Skipping transfer route, first leg failed", "junction", junctionID, "error", err)
		return nil
	}
	second, _, err := timetables.QueryOD(ctx, junction, to, date)
	if err != nil {
		a.logger.Warn("Skipping transfer route, second leg failed", "junction", junctionID, "error", err)
		return nil
	}
	if len(first) == 0 || len(second) == 0 {
		return nil
	}

	return []domain.TransferLeg{{TransferStationID: junctionID, FirstLeg: first, SecondLeg: second}}
}

// transferTimes is a secondary lookup; without it the planner falls back to
// the configured minimum.
func (a *App) transferTimes(ctx context.Context) *services.TransferTimeResolver {
	resolver, err := services.NewTransferTimeResolver(ctx, a.client)
	if err != nil {
		a.logger.Warn("Transfer time table unavailable, using defaults", "error", err)
		return nil
	}
	return resolver
}

func journeySortKey(key string) domain.JourneySortKey {
	switch key {
	case "arrival":
		return domain.SortByArrival
	case "duration":
		return domain.SortByDuration
	case "transfers":
		return domain.SortByTransfers
	default:
		return domain.SortByDeparture
	}
}

func (a *App) runTimetable(ctx context.Context, args []string) error {
	fs := newFlagSet("timetable")
	date := fs.String("date", time.Now().Format(dateLayout), "service date")
	pos, err := parseFlags(fs, args, 2)
	if err != nil {
		return err
	}

	resolver, err := a.stationResolver(ctx)
	if err != nil {
		return err
	}
	from, err := resolver.Resolve(pos[0])
	if err != nil {
		return err
	}
	to, err := resolver.Resolve(pos[1])
	if err != nil {
		return err
	}

	branch, err := a.branchLineResolver(ctx)
	if err != nil {
		return err
	}

	segments, strategy, err := services.NewTimetableService(a.client, branch).QueryOD(ctx, from.Station, to.Station, *date)
	if err != nil {
		return err
	}
	return a.renderSegments(from.Station, to.Station, *date, strategy, segments)
}

func (a *App) runTrain(ctx context.Context, args []string) error {
	fs := newFlagSet("train")
	pos, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}

	client, err := a.requireClient()
	if err != nil {
		return err
	}
	a.logger.InfoWithTrain("Fetching timetable for train", pos[0])
	timetable, err := client.GetTrainTimetable(ctx, pos[0])
	if err != nil {
		return err
	}
	return a.renderTrainTimetable(timetable)
}

func (a *App) runLive(ctx context.Context, args []string) error {
	fs := newFlagSet("live")
	pos, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}

	client, err := a.requireClient()
	if err != nil {
		return err
	}
	a.logger.InfoWithTrain("Fetching live status for train", pos[0])
	statuses, err := client.GetTrainLiveBoard(ctx, pos[0])
	if err != nil {
		return err
	}
	return a.renderLiveStatuses(statuses)
}

func (a *App) runDelays(ctx context.Context, args []string) error {
	fs := newFlagSet("delays")
	pos, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}

	client, err := a.requireClient()
	if err != nil {
		return err
	}
	delays, err := client.GetLiveTrainDelays(ctx, pos)
	if err != nil {
		return err
	}
	return a.renderDelays(delays)
}

func (a *App) runBoard(ctx context.Context, args []string) error {
	fs := newFlagSet("board")
	pos, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}

	resolver, err := a.stationResolver(ctx)
	if err != nil {
		return err
	}
	station, err := resolver.Resolve(pos[0])
	if err != nil {
		return err
	}

	a.logger.InfoWithStation("Fetching live board for", station.Station.Name)
	entries, err := a.client.GetStationLiveBoard(ctx, station.Station.ID)
	if err != nil {
		return err
	}
	return a.renderStationBoard(station.Station, entries)
}

func (a *App) runStation(ctx context.Context, args []string) error {
	fs := newFlagSet("station")
	search := fs.Bool("search", false, "list closest matches instead of resolving")
	limit := fs.Int("limit", 5, "maximum matches to show")
	pos, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}

	resolver, err := a.stationResolver(ctx)
	if err != nil {
		return err
	}

	if *search {
		return a.renderStationCandidates(resolver.Search(pos[0], *limit))
	}

	match, err := resolver.Resolve(pos[0])
	if err != nil {
		return err
	}
	return a.renderStationMatch(match)
}

func (a *App) runFare(ctx context.Context, args []string) error {
	fs := newFlagSet("fare")
	pos, err := parseFlags(fs, args, 2)
	if err != nil {
		return err
	}

	resolver, err := a.stationResolver(ctx)
	if err != nil {
		return err
	}
	from, err := resolver.Resolve(pos[0])
	if err != nil {
		return err
	}
	to, err := resolver.Resolve(pos[1])
	if err != nil {
		return err
	}

	fare, err := a.client.GetODFare(ctx, from.Station.ID, to.Station.ID)
	if err != nil {
		return err
	}
	return a.renderFare(from.Station, to.Station, fare)
}

func (a *App) runTpass(ctx context.Context, args []string) error {
	fs := newFlagSet("tpass")
	pos, err := parseFlags(fs, args, 3)
	if err != nil {
		return err
	}

	resolver, err := a.stationResolver(ctx)
	if err != nil {
		return err
	}
	from, err := resolver.Resolve(pos[1])
	if err != nil {
		return err
	}
	to, err := resolver.Resolve(pos[2])
	if err != nil {
		return err
	}

	calculator := services.NewTpassFareCalculator(a.client.FareSource(), nil, a.logger.GetUnderlying())
	options, err := calculator.CalculateCrossRegionOptions(ctx, pos[0], from.Station.ID, to.Station.ID)
	if err != nil {
		return err
	}
	return a.renderFareOptions(resolver, from.Station, to.Station, options)
}

func (a *App) runAlerts(ctx context.Context, args []string) error {
	fs := newFlagSet("alerts")
	station := fs.String("station", "", "check one station for suspensions")
	if _, err := parseFlags(fs, args, 0); err != nil {
		return err
	}

	client, err := a.requireClient()
	if err != nil {
		return err
	}
	alertService := services.NewAlertService(client)

	if *station != "" {
		resolver, err := a.stationResolver(ctx)
		if err != nil {
			return err
		}
		match, err := resolver.Resolve(*station)
		if err != nil {
			return err
		}
		suspended, err := alertService.IsStationSuspended(ctx, match.Station.ID)
		if err != nil {
			return err
		}
		return a.renderSuspension(match.Station, suspended)
	}

	alerts, err := alertService.GetActiveAlerts(ctx)
	if err != nil {
		return err
	}
	return a.renderAlerts(alerts)
}

func (a *App) runExits(ctx context.Context, args []string) error {
	fs := newFlagSet("exits")
	pos, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}

	resolver, err := a.stationResolver(ctx)
	if err != nil {
		return err
	}
	station, err := resolver.Resolve(pos[0])
	if err != nil {
		return err
	}

	exits, err := a.client.GetStationExits(ctx, station.Station.ID)
	if err != nil {
		return err
	}
	return a.renderExits(station.Station, exits)
}

func (a *App) runMetrics(args []string) error {
	fs := newFlagSet("metrics")
	if _, err := parseFlags(fs, args, 0); err != nil {
		return err
	}

	if _, err := a.requireClient(); err != nil {
		return err
	}
	return a.renderMetrics(a.pool.GetMetrics(), a.pool.GetCapacity(), a.breaker.GetMetrics(), a.cache.Stats())
}

func (a *App) runHealth(ctx context.Context, args []string) error {
	fs := newFlagSet("health")
	if _, err := parseFlags(fs, args, 0); err != nil {
		return err
	}

	client, err := a.requireClient()
	if err != nil {
		return err
	}

	report := services.NewHealthCheckService(a.pool, a.breaker, a.cache, client).PerformHealthCheck(ctx)
	return a.renderHealth(report)
}

func (a *App) runCache(ctx context.Context, args []string) error {
	action := "stats"
	if len(args) > 0 {
		action = args[0]
	}

	switch strings.ToLower(action) {
	case "stats":
		return a.renderCacheStats(a.cache.Stats())
	case "prune":
		removed := a.cache.Prune(ctx)
		a.logger.InfoWithCount("Pruned expired cache entries", removed)
		return nil
	case "clear":
		if err := a.cache.Clear(ctx); err != nil {
			return err
		}
		a.logger.Info("Cache cleared")
		return nil
	default:
		return domain.NewError(domain.CodeBadInput, fmt.Sprintf("unknown cache action %q", action))
	}
}
