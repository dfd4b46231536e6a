// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, cfg)

# Endpoints

Health:

	GET /health

Voter registry (admin, requires X-Admin-Key):

	POST  /voters                  - Register voter
	GET   /voters                  - List voters
	GET   /voters/{id}             - Look up voter
	PATCH /voters/{id}/eligibility - Grant or revoke eligibility

Candidates:

	GET  /candidates                 - Active candidates (?all=true for every one)
	POST /candidates                 - Add candidate (admin, setup only)
	POST /candidates/{id}/deactivate - Withdraw candidate (admin, setup only)
	POST /candidates/{id}/activate   - Reinstate candidate (admin, setup only)

Lifecycle:

	GET  /election       - Phase, deadline and totals
	POST /election/start - Open voting (admin)
	POST /election/end   - Close voting (admin)
	POST /election/reset - Clear ledger (admin)

Voting (public):

	POST /votes           - Submit vote
	GET  /votes/{voterId} - Has this voter voted

Results (public):

	GET /results        - Tally
	GET /results/leader - Live leader
	GET /results/winner - Final winner (ended only)
	GET /stats          - Turnout, ?group_by=<attribute>
*/
package router
