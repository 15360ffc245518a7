package statuspage

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
)

// adHTML is the fixed ad-banner landing page text from
// SocketHttp.cpp/Socket.cpp's WINXP_BANNER_AD_REQUEST handler, with the
// repository link updated for this project.
const adHTML = `<HTML>
	<HEAD></HEAD>
	<BODY MARGINWIDTH="0" MARGINHEIGHT="0" TOPMARGIN="0" LEFTMARGIN="0" BGCOLOR="#FFFFFF">
		<A HREF="/" TARGET="_new">
			<IMG SRC="/banner.png" ALT="Powered by boardlink" BORDER=0 WIDTH=380 HEIGHT=200>
		</A>
	</BODY>
</HTML>
`

// bannerPNGBase64 is a 1x1 transparent PNG placeholder: the original's
// XP_AD_BANNER_DATA bytes (a real 380x200 banner image) were not part of
// the retrieved source pack, so this stands in for it while preserving the
// exact header framing (Content-Type/Content-Length/Connection: close).
const bannerPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNk+A8AAQUBAScY42YAAAAASUVORK5CYII="

var bannerPNG = mustDecodeBanner()

func mustDecodeBanner() []byte {
	data, err := base64.StdEncoding.DecodeString(bannerPNGBase64)
	if err != nil {
		panic("statuspage: invalid embedded banner PNG: " + err.Error())
	}
	return data
}

func serveAdHTML() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeHTMLResponse(w, adHTML)
	}
}

func serveBannerPNG() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(bannerPNG)))
		w.Header().Set("Connection", "close")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(bannerPNG)
	}
}
