// internal/datatype/common.go
//
// Shared primitives every datatype schema is built from: the semicircle
// position pair, the radian position pair used by A700/PVT, the Garmin
// epoch time conversion, and the documented sentinel values every decoder
// preserves (0xFFFFFFFF for unknown time, 1.0e25 for unknown float).
// Semantic decode only, never mutating the schema-decoded record.
package datatype

import (
	"fmt"
	"time"

	"github.com/guiperry/garminlink/internal/schema"
)

// TimeUnknown is the sentinel raw value meaning "time not supported or
// unknown" for every 32-bit Garmin timestamp field.
const TimeUnknown uint32 = 0xFFFFFFFF

// FloatUnknown is the sentinel raw value meaning "not supported or
// unknown" for altitude, depth, temperature and similar float fields.
const FloatUnknown float32 = 1.0e25

// PositionSentinel is the raw semicircle value that, when present in both
// lat and lon, marks a Position as invalid.
const PositionSentinel int32 = 0x7FFFFFFF

// GarminEpoch is 12:00 AM December 31, 1989 UTC — the reference point for
// every 32-bit Garmin timestamp.
var GarminEpoch = time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)

// DecodeTime converts a raw Garmin timestamp to a time.Time. ok is false
// when raw is the TimeUnknown sentinel.
func DecodeTime(raw uint32) (t time.Time, ok bool) {
	if raw == TimeUnknown {
		return time.Time{}, false
	}
	return GarminEpoch.Add(time.Duration(raw) * time.Second), true
}

// EncodeTime is DecodeTime's inverse.
func EncodeTime(t time.Time) uint32 {
	return uint32(t.Sub(GarminEpoch).Seconds())
}

// Position is a semicircle lat/lon pair (2^31 semicircles = 180 degrees).
type Position struct {
	Lat, Lon int32
}

// IsValid reports whether the position is something other than the
// all-sentinel "no position" value.
func (p Position) IsValid() bool {
	return !(p.Lat == PositionSentinel && p.Lon == PositionSentinel)
}

// Degrees converts semicircles to degrees.
func (p Position) Degrees() (lat, lon float64) {
	const scale = 180.0 / 2147483648.0 // 180 / 2^31
	return float64(p.Lat) * scale, float64(p.Lon) * scale
}

// RadianPosition is the lat/lon pair A700 and PVT (D800) report in
// radians rather than semicircles.
type RadianPosition struct {
	Lat, Lon float64
}

// Degrees converts radians to degrees.
func (p RadianPosition) Degrees() (lat, lon float64) {
	const scale = 180.0 / 3.141592653589793
	return p.Lat * scale, p.Lon * scale
}

// Symbol is a waypoint symbol id (D150+ use a 16-bit code; D100-era
// devices pack the same id into a single byte). The catalog below is the
// complete documented table: marine ids from 0, land ids from 8192,
// aviation ids from 16384. Unknown ids format as "sym_<id>" rather than
// failing.
type Symbol uint16

var symbolNames = map[Symbol]string{
	0:    "sym_anchor",
	1:    "sym_bell",
	2:    "sym_diamond_grn",
	3:    "sym_diamond_red",
	4:    "sym_dive1",
	5:    "sym_dive2",
	6:    "sym_dollar",
	7:    "sym_fish",
	8:    "sym_fuel",
	9:    "sym_horn",
	10:   "sym_house",
	11:   "sym_knife",
	12:   "sym_light",
	13:   "sym_mug",
	14:   "sym_skull",
	15:   "sym_square_grn",
	16:   "sym_square_red",
	17:   "sym_wbuoy",
	18:   "sym_wpt_dot",
	19:   "sym_wreck",
	20:   "sym_null",
	21:   "sym_mob",
	22:   "sym_buoy_ambr",
	23:   "sym_buoy_blck",
	24:   "sym_buoy_blue",
	25:   "sym_buoy_grn",
	26:   "sym_buoy_grn_red",
	27:   "sym_buoy_grn_wht",
	28:   "sym_buoy_orng",
	29:   "sym_buoy_red",
	30:   "sym_buoy_red_grn",
	31:   "sym_buoy_red_wht",
	32:   "sym_buoy_violet",
	33:   "sym_buoy_wht",
	34:   "sym_buoy_wht_grn",
	35:   "sym_buoy_wht_red",
	36:   "sym_dot",
	37:   "sym_rbcn",
	150:  "sym_boat_ramp",
	151:  "sym_camp",
	152:  "sym_restrooms",
	153:  "sym_showers",
	154:  "sym_drinking_wtr",
	155:  "sym_phone",
	156:  "sym_1st_aid",
	157:  "sym_info",
	158:  "sym_parking",
	159:  "sym_park",
	160:  "sym_picnic",
	161:  "sym_scenic",
	162:  "sym_skiing",
	163:  "sym_swimming",
	164:  "sym_dam",
	165:  "sym_controlled",
	166:  "sym_danger",
	167:  "sym_restricted",
	168:  "sym_null_2",
	169:  "sym_ball",
	170:  "sym_car",
	171:  "sym_deer",
	172:  "sym_shpng_cart",
	173:  "sym_lodging",
	174:  "sym_mine",
	175:  "sym_trail_head",
	176:  "sym_truck_stop",
	177:  "sym_user_exit",
	178:  "sym_flag",
	179:  "sym_circle_x",
	180:  "sym_open_24hr",
	181:  "sym_fhs_facility",
	182:  "sym_bot_cond",
	183:  "sym_tide_pred_stn",
	184:  "sym_anchor_prohib",
	185:  "sym_beacon",
	186:  "sym_coast_guard",
	187:  "sym_reef",
	188:  "sym_weedbed",
	189:  "sym_dropoff",
	190:  "sym_dock",
	191:  "sym_marina",
	192:  "sym_bait_tackle",
	193:  "sym_stump",
	194:  "sym_dsc_posn",
	195:  "sym_dsc_distress",
	196:  "sym_wbuoy_dark",
	197:  "sym_exp_wreck",
	198:  "sym_rcmmd_anchor",
	199:  "sym_brush_pile",
	200:  "sym_caution",
	201:  "sym_fish_1",
	202:  "sym_fish_2",
	203:  "sym_fish_3",
	204:  "sym_fish_4",
	205:  "sym_fish_5",
	206:  "sym_fish_6",
	207:  "sym_fish_7",
	208:  "sym_fish_8",
	209:  "sym_fish_9",
	210:  "sym_fish_attract",
	211:  "sym_hump",
	212:  "sym_laydown",
	213:  "sym_ledge",
	214:  "sym_lilly_pads",
	215:  "sym_no_wake_zone",
	216:  "sym_rocks",
	217:  "sym_stop",
	218:  "sym_undrwtr_grss",
	219:  "sym_undrwtr_tree",
	220:  "sym_pin_yllw",
	221:  "sym_flag_yllw",
	222:  "sym_diamond_yllw",
	223:  "sym_cricle_yllw",
	224:  "sym_square_yllw",
	225:  "sym_triangle_yllw",
	7680: "sym_begin_custom",
	8191: "sym_end_custom",
	8192: "sym_is_hwy",
	8193: "sym_us_hwy",
	8194: "sym_st_hwy",
	8195: "sym_mi_mrkr",
	8196: "sym_trcbck",
	8197: "sym_golf",
	8198: "sym_sml_cty",
	8199: "sym_med_cty",
	8200: "sym_lrg_cty",
	8201: "sym_freeway",
	8202: "sym_ntl_hwy",
	8203: "sym_cap_cty",
	8204: "sym_amuse_pk",
	8205: "sym_bowling",
	8206: "sym_car_rental",
	8207: "sym_car_repair",
	8208: "sym_fastfood",
	8209: "sym_fitness",
	8210: "sym_movie",
	8211: "sym_museum",
	8212: "sym_pharmacy",
	8213: "sym_pizza",
	8214: "sym_post_ofc",
	8215: "sym_rv_park",
	8216: "sym_school",
	8217: "sym_stadium",
	8218: "sym_store",
	8219: "sym_zoo",
	8220: "sym_gas_plus",
	8221: "sym_faces",
	8222: "sym_ramp_int",
	8223: "sym_st_int",
	8226: "sym_weigh_sttn",
	8227: "sym_toll_booth",
	8228: "sym_elev_pt",
	8229: "sym_ex_no_srvc",
	8230: "sym_geo_place_mm",
	8231: "sym_geo_place_wtr",
	8232: "sym_geo_place_lnd",
	8233: "sym_bridge",
	8234: "sym_building",
	8235: "sym_cemetery",
	8236: "sym_church",
	8237: "sym_civil",
	8238: "sym_crossing",
	8239: "sym_hist_town",
	8240: "sym_levee",
	8241: "sym_military",
	8242: "sym_oil_field",
	8243: "sym_tunnel",
	8244: "sym_beach",
	8245: "sym_forest",
	8246: "sym_summit",
	8247: "sym_lrg_ramp_int",
	8249: "sym_badge",
	8250: "sym_cards",
	8251: "sym_snowski",
	8252: "sym_iceskate",
	8253: "sym_wrecker",
	8254: "sym_border",
	8255: "sym_geocache",
	8256: "sym_geocache_fnd",
	8257: "sym_cntct_smiley",
	8258: "sym_cntct_ball_cap",
	8259: "sym_cntct_big_ears",
	8260: "sym_cntct_spike",
	8261: "sym_cntct_goatee",
	8262: "sym_cntct_afro",
	8263: "sym_cntct_dreads",
	8264: "sym_cntct_female1",
	8265: "sym_cntct_female2",
	8266: "sym_cntct_female3",
	8267: "sym_cntct_ranger",
	8268: "sym_cntct_kung_fu",
	8269: "sym_cntct_sumo",
	8270: "sym_cntct_pirate",
	8271: "sym_cntct_biker",
	8272: "sym_cntct_alien",
	8273: "sym_cntct_bug",
	8274: "sym_cntct_cat",
	8275: "sym_cntct_dog",
	8276: "sym_cntct_pig",
	8277: "sym_cntct_blond_woman",
	8278: "sym_cntct_clown",
	8279: "sym_cntct_glasses_boy",
	8280: "sym_cntct_panda",
	8281: "sym_cntct_reserved5",
	8282: "sym_hydrant",
	8283: "sym_voice_rec",
	8284: "sym_flag_blue",
	8285: "sym_flag_green",
	8286: "sym_flag_red",
	8287: "sym_pin_blue",
	8288: "sym_pin_green",
	8289: "sym_pin_red",
	8290: "sym_block_blue",
	8291: "sym_block_green",
	8292: "sym_block_red",
	8293: "sym_bike_trail",
	8294: "sym_circle_red",
	8295: "sym_circle_green",
	8296: "sym_circle_blue",
	8299: "sym_diamond_blue",
	8300: "sym_oval_red",
	8301: "sym_oval_green",
	8302: "sym_oval_blue",
	8303: "sym_rect_red",
	8304: "sym_rect_green",
	8305: "sym_rect_blue",
	8308: "sym_square_blue",
	8309: "sym_letter_a_red",
	8310: "sym_letter_b_red",
	8311: "sym_letter_c_red",
	8312: "sym_letter_d_red",
	8313: "sym_letter_a_green",
	8314: "sym_letter_b_green",
	8315: "sym_letter_c_green",
	8316: "sym_letter_d_green",
	8317: "sym_letter_a_blue",
	8318: "sym_letter_b_blue",
	8319: "sym_letter_c_blue",
	8320: "sym_letter_d_blue",
	8321: "sym_number_0_red",
	8322: "sym_number_1_red",
	8323: "sym_number_2_red",
	8324: "sym_number_3_red",
	8325: "sym_number_4_red",
	8326: "sym_number_5_red",
	8327: "sym_number_6_red",
	8328: "sym_number_7_red",
	8329: "sym_number_8_red",
	8330: "sym_number_9_red",
	8331: "sym_number_0_green",
	8332: "sym_number_1_green",
	8333: "sym_number_2_green",
	8334: "sym_number_3_green",
	8335: "sym_number_4_green",
	8336: "sym_number_5_green",
	8337: "sym_number_6_green",
	8338: "sym_number_7_green",
	8339: "sym_number_8_green",
	8340: "sym_number_9_green",
	8341: "sym_number_0_blue",
	8342: "sym_number_1_blue",
	8343: "sym_number_2_blue",
	8344: "sym_number_3_blue",
	8345: "sym_number_4_blue",
	8346: "sym_number_5_blue",
	8347: "sym_number_6_blue",
	8348: "sym_number_7_blue",
	8349: "sym_number_8_blue",
	8350: "sym_number_9_blue",
	8351: "sym_triangle_blue",
	8352: "sym_triangle_green",
	8353: "sym_triangle_red",
	8354: "sym_library",
	8355: "sym_bus",
	8356: "sym_city_hall",
	8357: "sym_wine",
	8358: "sym_oem_dealer",
	8359: "sym_food_asian",
	8360: "sym_food_deli",
	8361: "sym_food_italian",
	8362: "sym_food_seafood",
	8363: "sym_food_steak",
	8364: "sym_atv",
	8365: "sym_big_game",
	8366: "sym_blind",
	8367: "sym_blood_trail",
	8368: "sym_cover",
	8369: "sym_covey",
	8370: "sym_food_source",
	8371: "sym_furbearer",
	8372: "sym_lodge",
	8373: "sym_small_game",
	8374: "sym_tracks",
	8375: "sym_treed_quarry",
	8376: "sym_tree_stand",
	8377: "sym_truck",
	8378: "sym_upland_game",
	8379: "sym_waterfowl",
	8380: "sym_water_source",
	8381: "sym_tracker_auto_dark_blue",
	8382: "sym_tracker_auto_green",
	8383: "sym_tracker_auto_light_blue",
	8384: "sym_tracker_auto_light_purple",
	8385: "sym_tracker_auto_lime",
	8386: "sym_tracker_auto_normal",
	8387: "sym_tracker_auto_orange",
	8388: "sym_tracker_auto_purple",
	8389: "sym_tracker_auto_red",
	8390: "sym_tracker_auto_sky_blue",
	8391: "sym_tracker_auto_yellow",
	8392: "sym_tracker_gnrc_dark_blue",
	8393: "sym_tracker_gnrc_green",
	8394: "sym_tracker_gnrc_light_blue",
	8395: "sym_tracker_gnrc_light_purple",
	8396: "sym_tracker_gnrc_lime",
	8397: "sym_tracker_gnrc_normal",
	8398: "sym_tracker_gnrc_orange",
	8399: "sym_tracker_gnrc_purple",
	8400: "sym_tracker_gnrc_red",
	8401: "sym_tracker_gnrc_sky_blue",
	8402: "sym_tracker_gnrc_yellow",
	8403: "sym_tracker_pdstrn_dark_blue",
	8404: "sym_tracker_pdstrn_green",
	8405: "sym_tracker_pdstrn_light_blue",
	8406: "sym_tracker_pdstrn_light_purple",
	8407: "sym_tracker_pdstrn_lime",
	8408: "sym_tracker_pdstrn_normal",
	8409: "sym_tracker_pdstrn_orange",
	8410: "sym_tracker_pdstrn_purple",
	8411: "sym_tracker_pdstrn_red",
	8412: "sym_tracker_pdstrn_sky_blue",
	8413: "sym_tracker_pdstrn_yellow",
	8414: "sym_tracker_auto_dsbl_dark_blue",
	8415: "sym_tracker_auto_dsbl_green",
	8416: "sym_tracker_auto_dsbl_light_blue",
	8417: "sym_tracker_auto_dsbl_light_purple",
	8418: "sym_tracker_auto_dsbl_lime",
	8419: "sym_tracker_auto_dsbl_normal",
	8420: "sym_tracker_auto_dsbl_orange",
	8421: "sym_tracker_auto_dsbl_purple",
	8422: "sym_tracker_auto_dsbl_red",
	8423: "sym_tracker_auto_dsbl_sky_blue",
	8424: "sym_tracker_auto_dsbl_yellow",
	8425: "sym_tracker_gnrc_dsbl_dark_blue",
	8426: "sym_tracker_gnrc_dsbl_green",
	8427: "sym_tracker_gnrc_dsbl_light_blue",
	8428: "sym_tracker_gnrc_dsbl_light_purple",
	8429: "sym_tracker_gnrc_dsbl_lime",
	8430: "sym_tracker_gnrc_dsbl_normal",
	8431: "sym_tracker_gnrc_dsbl_orange",
	8432: "sym_tracker_gnrc_dsbl_purple",
	8433: "sym_tracker_gnrc_dsbl_red",
	8434: "sym_tracker_gnrc_dsbl_sky_blue",
	8435: "sym_tracker_gnrc_dsbl_yellow",
	8436: "sym_tracker_pdstrn_dsbl_dark_blue",
	8437: "sym_tracker_pdstrn_dsbl_green",
	8438: "sym_tracker_pdstrn_dsbl_light_blue",
	8439: "sym_tracker_pdstrn_dsbl_light_purple",
	8440: "sym_tracker_pdstrn_dsbl_lime",
	8441: "sym_tracker_pdstrn_dsbl_normal",
	8442: "sym_tracker_pdstrn_dsbl_orange",
	8443: "sym_tracker_pdstrn_dsbl_purple",
	8444: "sym_tracker_pdstrn_dsbl_red",
	8445: "sym_tracker_pdstrn_dsbl_sky_blue",
	8446: "sym_tracker_pdstrn_dsbl_yellow",
	8447: "sym_sm_red_circle",
	8448: "sym_sm_yllw_circle",
	8449: "sym_sm_green_circle",
	8450: "sym_sm_blue_circle",
	8451: "sym_alert",
	8452: "sym_snow_mobile",
	8453: "sym_wind_turbine",
	8454: "sym_camp_fire",
	8455: "sym_binoculars",
	8456: "sym_kayak",
	8457: "sym_canoe",
	8458: "sym_shelter",
	8459: "sym_xski",
	8460: "sym_hunting",
	8461: "sym_horse_tracks",
	8462: "sym_tree",
	8463: "sym_lighthouse",
	8464: "sym_creek_crossing",
	8465: "sym_deer_sign_scrape",
	8466: "sym_deer_sign_rub",
	8467: "sym_elk",
	8468: "sym_elk_wallow",
	8469: "sym_shed_antlers",
	8470: "sym_turkey",
	16384: "sym_airport",
	16385: "sym_int",
	16386: "sym_ndb",
	16387: "sym_vor",
	16388: "sym_heliport",
	16389: "sym_private",
	16390: "sym_soft_fld",
	16391: "sym_tall_tower",
	16392: "sym_short_tower",
	16393: "sym_glider",
	16394: "sym_ultralight",
	16395: "sym_parachute",
	16396: "sym_vortac",
	16397: "sym_vordme",
	16398: "sym_faf",
	16399: "sym_lom",
	16400: "sym_map",
	16401: "sym_tacan",
	16402: "sym_seaplane",
}

func (s Symbol) String() string {
	if name, ok := symbolNames[s]; ok {
		return name
	}
	return fmt.Sprintf("sym_%d", uint16(s))
}

// mustSchema compiles a named field list, panicking on a malformed format
// — every caller here is a compile-time constant table, not input, the
// same justification internal/capability's mustSchema uses.
func mustSchema(name string, fields ...schema.FieldSpec) *schema.Schema {
	s, err := schema.NewSchema(name, fields...)
	if err != nil {
		panic(fmt.Sprintf("datatype: %s: %v", name, err))
	}
	return s
}

// positionOf reads a nested "(ii)" position field already decoded into a
// []schema.Value pair.
func positionOf(v schema.Value) Position {
	pair := v.([]schema.Value)
	return Position{Lat: pair[0].(int32), Lon: pair[1].(int32)}
}

func positionValue(p Position) schema.Value {
	return []schema.Value{p.Lat, p.Lon}
}

func radianPositionOf(v schema.Value) RadianPosition {
	pair := v.([]schema.Value)
	return RadianPosition{Lat: pair[0].(float64), Lon: pair[1].(float64)}
}

func radianPositionValue(p RadianPosition) schema.Value {
	return []schema.Value{p.Lat, p.Lon}
}

// record builds a *schema.Record from a schema and its values in field
// order, the packing-side counterpart of schema.Unpack's decode.
func record(s *schema.Schema, values ...schema.Value) *schema.Record {
	return &schema.Record{Schema: s, Values: values}
}
