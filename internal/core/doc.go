// Package core normalizes contact-export CSV files into deduplicated user
// records.
//
// # Header convention
//
// Each header cell is "<base>[ <tag>...]". The base name picks the handling
// strategy once, when the plan is built:
//
//   - eid: identity key, required; rows sharing a key merge into one record
//   - group: every value joins the record's group set
//   - phone, email: values are validated and canonicalized into addresses
//     carrying the column's tags
//   - see_all, invisible: coerced to booleans
//   - anything else: stored as a string field
//
// # Flow
//
//	n := core.NewNormalizer(phoneParser, "BR")
//	res, err := n.Normalize(data)
//	err = core.EncodeRecords(w, res.Records)
//
// Normalize splits the input into lines, builds a [Plan] from line 1 with
// [BuildColumnPlan] and folds every other line with [Dataset.MergeRow].
// Cell values are split with [SplitRow] and [ParseValue].
//
// # Errors
//
// A header without an eid column yields a [*ConfigurationError]. Invalid
// phones or emails are dropped and listed in [Result.Rejections]; nothing
// below the header fails a run. [MapError] turns errors into coded,
// user-facing messages.
package core
