// Package dbcfile reads the DBC text format: the line-oriented,
// keyword-prefixed grammar (VERSION, NS_, BS_, BU_, BO_/SG_, CM_, VAL_,
// VAL_TABLE_, BA_DEF_/BA_DEF_DEF_/BA_, SG_MUL_VAL_, EV_) used to exchange
// dbc.Network definitions between tools.
package dbcfile
