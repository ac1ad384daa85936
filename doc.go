// Package liquidity plans the cash of fund portfolios whose redemptions and
// subscriptions settle days after they are requested.
//
// The core functionalities include:
//   - Settlement dates: fund liquidation parameters (D+conversion+settlement
//     in business or calendar days) resolved from a catalog by code, name or
//     ticker.
//   - Cash timeline: a day-by-day simulation of the effective cash, CAIXA
//     plus the cash-equivalent funds, under the pending movements.
//   - Request date advice: which pending redemptions to request earlier so
//     that outflows stay covered.
//   - Adherence: the gap of every fund to its target weight once every
//     pending movement is applied.
//   - Rebalancing plan: a greedy schedule of redemptions and subscriptions
//     that cover liabilities and close the gaps, validated on the timeline.
//
// Every function works on immutable values and does no I/O. The same inputs
// always give the same outputs, Options.Logger only observes the run.
//
// This package serves as the foundational logic for the `liq` command-line
// tool and its HTTP API.
package liquidity
