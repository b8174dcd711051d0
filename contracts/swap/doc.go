/*
Package swap implements Swap contract which exchanges one NEP-17 token for
another at a fixed rate.

Swap contract accepts tokens of the accepted token contract and pays back the
deposited amount multiplied by the exchange rate in tokens of the offered token
contract. A deposit is trusted only when it is reported by the accepted token
contract itself (the calling script hash of OnNEP17Payment or Deposit), the
`from` and `amount` arguments are never trusted otherwise.

Accepted tokens either stay on the contract account until the admin withdraws
them (accrue policy) or are forwarded to the admin in the same invocation
(immediate forward policy). The contract never keeps its own balance sheet,
available amounts are always asked from the token contracts using the view key
registered at deployment.

# Deployment

Deployment data is a structure of:

	admin:        Hash160, the only account allowed to withdraw and update
	accepted:     Hash160, accepted token contract
	offered:      Hash160, offered token contract
	exchangeRate: Integer, amount of offered tokens per one accepted token
	viewKey:      String, view key registered in both token contracts
	forward:      Integer, 0 for accrue policy, 1 for immediate forward
	saleEndTime:  Integer, informational, not enforced

Both token contracts must implement `registerViewKey(key string)` and
`balanceOfWithKey(holder Hash160, key string) int` in addition to NEP-17.

# Contract notifications

Settlement notification. This notification is produced when a deposit is
settled.

	Settlement:
	  - name: depositor
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: offered
	    type: Integer

Withdrawal notification. This notification is produced when the admin
withdraws accepted tokens.

	Withdrawal:
	  - name: admin
	    type: Hash160
	  - name: amount
	    type: Integer

ReserveReplenished notification. This notification is produced when offered
tokens are transferred to the contract.

	ReserveReplenished:
	  - name: amount
	    type: Integer
*/
package swap

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'config' -> std.Serialize(Settings)
   the only record of the contract, Settings is a structure defined in
   current package

# Settlement
Contract stores total amount of accepted tokens settled so far. It is the
only value changed after deployment.
*/
