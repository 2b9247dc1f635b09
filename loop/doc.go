/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package loop is the convergence controller. Each iteration it audits the
tree, derives a mode from the report, prompts the agent, and decides
whether to continue, converge, or give up.

The agent is assumed unreliable: it may answer with a plan instead of
edits, stall without changing anything, or claim success it has not
earned. The controller supplies the discipline the agent lacks:

  - Mode is a pure function of the audit report. Missing or Partial
    requirements force Implement; a clean report switches to Verify.
  - Convergence requires the agent to emit the exact sentinel in Verify
    mode. Prose that merely sounds done is ignored.
  - An Implement iteration whose agent call changes nothing in scope is
    escalated exactly once with a retry marker, then the loop moves on.
  - MaxLoops bounds everything. There is no path that loops forever.

The test gate runs every iteration for diagnostics and once more after
the sentinel as a final advisory check; its failures are reported but
never block convergence. Execution is strictly sequential: the agent
mutates a single shared working tree, so nothing here runs concurrently.
*/
package loop
