// Package treasury implements the analytics core of a global treasury
// platform: multi-currency cash positions are normalized to a single
// reporting currency, aggregated by entity, currency and region, and turned
// into three analytical products: a liquidity position, a cash-pool
// surplus/deficit allocation, and a minimized set of inter-entity settlement
// transactions (netting). A data-quality ruleset gates all of the above.
//
// The core functionalities include:
//   - Snapshot: an immutable set of input records (accounts, balances,
//     FX rates, entities, pools) as of a single date. Every computation is a
//     pure, stateless function of the snapshot, so re-running on unchanged
//     input reproduces identical results.
//   - Currency Normalization: conversion of any balance to the reporting
//     currency using direct or inverse rate-pair lookup, never applying a
//     rate dated after the balance.
//   - Liquidity Aggregation: global, regional and per-entity rollups with
//     a deterministic accumulation order.
//   - Cash Pooling: per-pool surplus/deficit positions with an efficiency
//     score, and zero-balancing transfers for physical pools.
//   - Multilateral Netting: a greedy largest-against-largest matcher that
//     reduces gross inter-entity obligations to a small settlement set.
//   - Data Validation: independent data-quality rules producing an
//     idempotent issue report.
//
// Persistence, transport and rendering live in the store, server, cmd and
// renderer packages; this package only touches streams handed to its
// import/export functions.
package treasury
