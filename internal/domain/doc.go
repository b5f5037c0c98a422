// Package domain models public weather alerts published by Environment Canada
// as per-region Atom feeds.
//
// # Data Source
//
// Each configured region has a "battleboard" feed on the alert host, one per
// language:
//
//	/rss/battleboard/<code>_<lang>.xml  →  e.g. /rss/battleboard/on61_e.xml
//
// The language suffix is the first letter of the configured language tag
// ("e" for English, "f" for French). Regions with an empty code are skipped.
//
// # Title Conventions
//
// Entry titles pack four things into one line:
//
//	"<COLOR> <KIND> - <EVENT>, <REGION>"  →  e.g. "YELLOW WARNING - SNOWFALL, Toronto"
//
// The region part may contain further commas ("Ottawa North - Kanata - Orléans,
// Ontario"). Titles without a colour ("SPECIAL WEATHER STATEMENT - FOG, Halifax")
// and titles without a dash ("SNOWFALL ADVISORY, Toronto") both occur.
//
// Decomposition is three independent text operations applied in a fixed order:
//
//  1. split on the first ", " to separate the region label
//  2. split the remainder on " - " into kind (left) and event (right)
//  3. drop a leading colour token from the kind
//
// Severity is derived separately from a colour token anchored at the start of
// the raw title. A colour that is not the first token of the title is stripped
// from the kind only if it leads the dash segment, and never contributes to
// severity. See [Classify].
//
// # Placeholder Entries
//
// Regions without active alerts still publish one entry whose summary reads
// "No alerts in effect" (French: "Aucune alerte en vigueur"). These are dropped
// unless placeholders are explicitly kept, in which case they rank as
// [SeverityNone].
//
// # Ordering
//
// Alerts are ranked by severity (RED, ORANGE, YELLOW, NONE), then by the entry's
// "updated" timestamp, newest first. Entries without a usable timestamp trail
// their severity tier in input order. See [Rank].
package domain
