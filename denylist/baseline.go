package denylist

// baselineEntries ship with the library so protection works before the first
// successful sync. The synced snapshot overrides these per domain.
var baselineEntries = []Entry{
	{Domain: "klikbca-secure.com", Category: CategoryPhishing, Description: "BCA credential harvesting"},
	{Domain: "bca-mobile-update.com", Category: CategoryPhishing, Description: "fake BCA mobile update"},
	{Domain: "m-bca-verify.net", Category: CategoryPhishing, Description: "BCA verification scam"},
	{Domain: "undangan-digital.net", Category: CategoryMalware, Description: "wedding invitation APK dropper"},
	{Domain: "undangan-pernikahan.site", Category: CategoryMalware, Description: "wedding invitation APK dropper"},
	{Domain: "kurir-paket-info.com", Category: CategoryMalware, Description: "courier notice APK dropper"},
	{Domain: "dana-kaget-resmi.com", Category: CategoryScam, Description: "fake DANA giveaway"},
	{Domain: "hadiah-shopee.top", Category: CategoryScam, Description: "fake Shopee prize"},
	{Domain: "bri-info-nasabah.com", Category: CategoryPhishing, Description: "BRI account phishing"},
	{Domain: "mandiri-online-id.com", Category: CategoryPhishing, Description: "Mandiri online phishing"},
}
