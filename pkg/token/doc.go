/*
Package token manages the credential lifecycle for naming requests.

AccessTokenHolder performs one synchronous login at construction (so the
first request made right after construction already has a token, instead
of racing the refresh loop) and then keeps the token fresh in the
background: each successful login schedules the next attempt at half the
returned TTL; each failure retries after a fixed 6 seconds rather than
spinning.

A holder built with no username/password never starts the loop and
Token always returns "", so naming operations can unconditionally ask a
holder for a token without checking whether auth is configured.
*/
package token
