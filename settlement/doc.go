/*
Package settlement implements the deposit settlement of the swap contract as a
host-agnostic state transition.

Every invocation is

	(Config, Message) -> (Config', []Transfer)

or an error that leaves Config untouched. The Engine loads Config from its
Store once per invocation, validates the message fully, and saves Config at
most once at the very end, so the Store sees either the whole transition or
nothing. Transfers are returned to the host which executes them after the
commit (see Dispatch); the Engine never observes their outcome.

Caller identity is supplied by the host in Invocation and is the only trusted
input: depositor and amount of a deposit are meaningful only when the caller
is the accepted token ledger.

The package mirrors contracts/swap and decodes its storage record.
*/
package settlement
